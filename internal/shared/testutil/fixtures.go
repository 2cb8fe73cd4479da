package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Standard roster fixture. S003 has no marks; S004 only appears in the marks
// source.
var (
	IdentityLines = []string{
		"StudentID;Name;Class",
		"S001;Alice;10A",
		"S002;Bob;10B",
		"S003;Carol;10A",
	}
	MarksLines = []string{
		"StudentID;Math;Science;English",
		"S001;70,80,90;65,75,85;88,90,92",
		"S002;50,100,50;60,60;0,10",
		"S004;90;90;90",
	}
	WeightLines = []string{
		"Subject;Weight",
		"Math;1.5",
		"Science;1",
	}
)

// RosterFiles are the paths written by WriteRoster
type RosterFiles struct {
	Dir      string
	Identity string
	Marks    string
	Weights  string
}

// WriteLines writes lines joined by newlines to dir/name and returns the path
func WriteLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

// WriteRoster writes the standard identity, marks and weights sources into a
// fresh temp dir
func WriteRoster(t *testing.T) RosterFiles {
	t.Helper()

	dir := t.TempDir()
	return RosterFiles{
		Dir:      dir,
		Identity: WriteLines(t, dir, "students.csv", IdentityLines...),
		Marks:    WriteLines(t, dir, "marks.csv", MarksLines...),
		Weights:  WriteLines(t, dir, "weights.csv", WeightLines...),
	}
}

// WriteWorkbook writes rows into the first sheet of a new .xlsx file
func WriteWorkbook(t *testing.T, path string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

// SplitLines turns delimited fixture lines into rows
func SplitLines(lines []string, delim string) [][]string {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = strings.Split(l, delim)
	}
	return rows
}
