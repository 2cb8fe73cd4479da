package exporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rostercli/internal/dataprocessing"
	apperrors "rostercli/internal/errors"
	"rostercli/internal/reports"
	"rostercli/internal/shared/testutil"
	"rostercli/pkg/contracts/domain"
)

func fullStudent(id, name, class string, math, science, english []int) *domain.Student {
	s := domain.NewStudent(id, name, class)
	s.SetSubject("Math", math)
	s.SetSubject("Science", science)
	s.SetSubject("English", english)
	return s
}

func students() []*domain.Student {
	return []*domain.Student{
		fullStudent("S001", "Alice", "10A", []int{70, 80, 90}, []int{65, 75, 85}, []int{88, 90, 92}),
		fullStudent("S002", "Bob; Jr", "10B", []int{50, 100, 50}, []int{60}, []int{0, 10}),
	}
}

func newTestExporter(t *testing.T, opts RosterOptions) *RosterExporter {
	logger, _ := testutil.NewTestLogger(t)
	return NewRosterExporter(opts, logger)
}

func TestCSVWriter_Write(t *testing.T) {
	tests := []struct {
		name string
		opts CSVOptions
		want string
	}{
		{
			name: "default delimiter",
			opts: CSVOptions{},
			want: "A;B\n1;2,3\n",
		},
		{
			name: "pipe with BOM",
			opts: CSVOptions{Delimiter: '|', BOMPrefix: true},
			want: "\ufeffA|B\n1|2,3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewCSVWriter(tt.opts, nil)
			require.NoError(t, w.Write(&buf, []string{"A", "B"}, [][]string{{"1", "2,3"}}))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRosterExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "all_students.csv")
	e := newTestExporter(t, RosterOptions{})

	require.NoError(t, e.Export(context.Background(), students(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"StudentID;Name;Class;Math;Science;English",
		"S001;Alice;10A;70,80,90;65,75,85;88,90,92",
		`S002;"Bob; Jr";10B;50,100,50;60;0,10`,
	}, lines)
}

func TestRosterExporter_MissingSubject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all_students.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	incomplete := domain.NewStudent("S003", "Carol", "10A")
	incomplete.SetSubject("Math", []int{90})
	incomplete.SetSubject("English", []int{80})

	e := newTestExporter(t, RosterOptions{})
	err := e.Export(context.Background(), append(students(), incomplete), path)

	assert.ErrorIs(t, err, apperrors.ErrMissingSubject)
	var missing *apperrors.MissingSubjectError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "S003", missing.StudentID)
	assert.Equal(t, "Science", missing.Subject)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestRosterExporter_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		csv  CSVOptions
	}{
		{"plain", CSVOptions{Delimiter: ';'}},
		{"with BOM", CSVOptions{Delimiter: ';', BOMPrefix: true}},
		{"tab delimited", CSVOptions{Delimiter: '\t'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "all_students.csv")
			e := newTestExporter(t, RosterOptions{CSV: tt.csv})
			original := students()
			require.NoError(t, e.Export(context.Background(), original, path))

			logger, _ := testutil.NewTestLogger(t)
			parser := dataprocessing.NewParser(dataprocessing.ParserConfig{Delimiter: tt.csv.Delimiter}, logger)

			ids, err := parser.ParseIdentityFile(path)
			require.NoError(t, err)
			marks, err := parser.ParseMarksFile(path)
			require.NoError(t, err)
			require.Len(t, ids, len(original))
			require.Len(t, marks, len(original))

			for i, s := range original {
				assert.Equal(t, s.ID, ids[i].ID)
				assert.Equal(t, s.Name, ids[i].Name)
				assert.Equal(t, s.Class, ids[i].Class)
				assert.Equal(t, s.Subjects(), marks[i].Subjects)
			}
		})
	}
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	dest := Destinations{
		CSV:      filepath.Join(dir, "all_students.csv"),
		Workbook: filepath.Join(dir, "all_students.xlsx"),
	}
	e := newTestExporter(t, RosterOptions{})
	gen, err := reports.NewGenerator(domain.WeightTable{"Math": 2}, reports.Options{}, nil)
	require.NoError(t, err)

	input := students()
	require.NoError(t, ExportAll(context.Background(), e, gen, input, dest))
	assert.FileExists(t, dest.CSV)

	f, err := excelize.OpenFile(dest.Workbook)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMarks, SheetRanking}, f.GetSheetList())

	marks, err := f.GetRows(SheetMarks)
	require.NoError(t, err)
	require.Len(t, marks, 3)
	assert.Equal(t, e.Header(), marks[0])
	assert.Equal(t, "70,80,90", marks[1][3])

	ranking, err := f.GetRows(SheetRanking)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "Rank", ranking[0][0])
	assert.Equal(t, "S001", ranking[1][1])
	assert.Equal(t, "1", ranking[1][0])

	assert.Equal(t, "Alice", input[0].Name, "input is not modified")
}

func TestExportAll_MissingSubjectWritesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := Destinations{
		CSV:      filepath.Join(dir, "all_students.csv"),
		Workbook: filepath.Join(dir, "all_students.xlsx"),
	}
	e := newTestExporter(t, RosterOptions{})
	gen, err := reports.NewGenerator(nil, reports.Options{}, nil)
	require.NoError(t, err)

	input := append(students(), domain.NewStudent("S009", "Nobody", ""))
	err = ExportAll(context.Background(), e, gen, input, dest)
	assert.ErrorIs(t, err, apperrors.ErrMissingSubject)

	assert.NoFileExists(t, dest.CSV)
	assert.NoFileExists(t, dest.Workbook)
}

func TestExportAll_UnusableDestinationWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		dest func(dir string) Destinations
		kept string
	}{
		{
			name: "csv path is a directory",
			dest: func(dir string) Destinations {
				return Destinations{CSV: dir, Workbook: filepath.Join(dir, "all_students.xlsx")}
			},
			kept: "all_students.xlsx",
		},
		{
			name: "workbook path is a directory",
			dest: func(dir string) Destinations {
				return Destinations{CSV: filepath.Join(dir, "all_students.csv"), Workbook: dir}
			},
			kept: "all_students.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := newTestExporter(t, RosterOptions{})
			gen, err := reports.NewGenerator(nil, reports.Options{}, nil)
			require.NoError(t, err)

			err = ExportAll(context.Background(), e, gen, students(), tt.dest(dir))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeValidation, apperrors.GetErrorType(err))
			assert.NoFileExists(t, filepath.Join(dir, tt.kept))
		})
	}
}

func TestExportAll_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	dest := Destinations{
		CSV:      filepath.Join(dir, "all_students.csv"),
		Workbook: filepath.Join(dir, "all_students.xlsx"),
	}
	e := newTestExporter(t, RosterOptions{})
	gen, err := reports.NewGenerator(nil, reports.Options{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = ExportAll(ctx, e, gen, students(), dest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, dest.CSV)
	assert.NoFileExists(t, dest.Workbook)
}

func TestExportAll_CSVOnly(t *testing.T) {
	dir := t.TempDir()
	e := newTestExporter(t, RosterOptions{Subjects: []string{"Math"}})
	gen, err := reports.NewGenerator(nil, reports.Options{}, nil)
	require.NoError(t, err)

	s := domain.NewStudent("S1", "A", "X")
	s.SetSubject("Math", []int{1})
	require.NoError(t, ExportAll(context.Background(), e, gen, []*domain.Student{s},
		Destinations{CSV: filepath.Join(dir, "out.csv")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMetricCell(t *testing.T) {
	assert.Equal(t, "n/a", metricCell(domain.NoData))
	assert.Equal(t, 81.43, metricCell(domain.Of(81.428571)))
}
