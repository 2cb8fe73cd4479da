package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rostercli/internal/config"
	apperrors "rostercli/internal/errors"
	"rostercli/internal/infrastructure"
	"rostercli/internal/shared/testutil"
)

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Data.Dir = dir
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	a, err := NewApplication(context.Background(), cfg, Options{Logger: logger, TraceOut: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

// completeRoster writes a roster where every student has every subject.
func completeRoster(t *testing.T) string {
	dir := t.TempDir()
	testutil.WriteLines(t, dir, "students.csv", testutil.IdentityLines[:3]...)
	testutil.WriteLines(t, dir, "marks.csv", testutil.MarksLines[:3]...)
	testutil.WriteLines(t, dir, "weights.csv", testutil.WeightLines...)
	return dir
}

func TestNewApplication(t *testing.T) {
	files := testutil.WriteRoster(t)
	a := newTestApp(t, testConfig(files.Dir))

	assert.Equal(t, 4, a.Store.Len())
	assert.True(t, a.Store.Sealed())
	assert.Equal(t, 1.5, a.Weights.Weight("Math"))
}

func TestNewApplication_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, cfg *config.Config)
		wantErr  error
		wantCode string
	}{
		{
			name: "missing column",
			setup: func(t *testing.T, cfg *config.Config) {
				testutil.WriteLines(t, cfg.Data.Dir, "marks.csv", "StudentID;Math;Science", "S001;1;2")
			},
			wantErr:  apperrors.ErrSchema,
			wantCode: "SCHEMA",
		},
		{
			name: "unknown student rejected",
			setup: func(t *testing.T, cfg *config.Config) {
				cfg.Parsing.UnknownStudents = config.UnknownStudentsReject
			},
			wantErr:  apperrors.ErrUnknownStudent,
			wantCode: "REFERENCE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := testutil.WriteRoster(t)
			cfg := testConfig(files.Dir)
			tt.setup(t, cfg)

			logger, _ := testutil.NewTestLogger(t)
			a, err := NewApplication(context.Background(), cfg, Options{Logger: logger, TraceOut: io.Discard})
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.wantErr)

			d := apperrors.Describe(err)
			assert.True(t, d.Fatal)
			assert.Equal(t, tt.wantCode, d.Code)
		})
	}
}

func TestRun_Menu(t *testing.T) {
	files := testutil.WriteRoster(t)
	a := newTestApp(t, testConfig(files.Dir))

	in := strings.NewReader(strings.Join([]string{
		"1",
		"2",
		"3",
		"5", "S001",
		"5", "NOPE",
		"9",
		"0",
	}, "\n") + "\n")
	var out bytes.Buffer

	require.NoError(t, a.Run(context.Background(), in, &out))

	got := out.String()
	assert.Contains(t, got, "Roster (4 students)")
	assert.Contains(t, got, "Rank")
	assert.Contains(t, got, "#2 100 (+100.00%)")
	assert.Contains(t, got, "88,90,92")
	assert.Contains(t, got, "error [NOT_FOUND]")
	assert.Contains(t, got, `Unknown option "9"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(got), "Bye."))
}

func TestRun_ExportFailureReturnsToMenu(t *testing.T) {
	files := testutil.WriteRoster(t)
	a := newTestApp(t, testConfig(files.Dir))

	var out bytes.Buffer
	require.NoError(t, a.Run(context.Background(), strings.NewReader("4\n1\n"), &out))

	got := out.String()
	assert.Contains(t, got, `error [EXPORT]: export aborted: student "S003" has no Math marks`)
	assert.Contains(t, got, "Rank", "menu continues after a failed export")
	assert.NoFileExists(t, filepath.Join(files.Dir, config.DefaultExportFile))
}

func TestRun_Cancelled(t *testing.T) {
	files := testutil.WriteRoster(t)
	a := newTestApp(t, testConfig(files.Dir))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.Run(ctx, strings.NewReader("1\n"), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCommand(t *testing.T) {
	dir := completeRoster(t)
	cfg := testConfig(dir)
	cfg.Export.Workbook = true
	a := newTestApp(t, cfg)

	tests := []struct {
		cmd      string
		contains string
		wantErr  bool
	}{
		{"ranked", "Weighted", false},
		{"alpha", "Alice", false},
		{"progress", "progress", false},
		{"student:S002", "50,100,50", false},
		{"student:S404", "error [NOT_FOUND]", true},
		{"student", "error [VALIDATION]", true},
		{"bogus", "unknown command", true},
		{"export", "Exported 2 students", false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			var out bytes.Buffer
			err := a.RunCommand(context.Background(), tt.cmd, &out)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.contains)
		})
	}

	f, err := excelize.OpenFile(filepath.Join(dir, config.DefaultWorkbookFile))
	require.NoError(t, err)
	defer f.Close()
	ranking, err := f.GetRows("Ranking")
	require.NoError(t, err)
	assert.Len(t, ranking, 3)
}

func TestParseCommand(t *testing.T) {
	action, arg, err := ParseCommand(" Student : S001 ")
	require.NoError(t, err)
	assert.Equal(t, ActionStudent, action)
	assert.Equal(t, "S001", arg)

	_, _, err = ParseCommand("")
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.GetErrorType(err))
}

func TestDiagnosticsListener(t *testing.T) {
	files := testutil.WriteRoster(t)
	cfg := testConfig(files.Dir)
	cfg.Observability.MetricExporter = "prometheus"
	cfg.Observability.MetricsAddr = "127.0.0.1:0"
	a := newTestApp(t, cfg)
	require.NotNil(t, a.diagnostics)

	resp, err := http.Get("http://" + a.diagnostics.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status infrastructure.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, 4, status.Students)

	metrics, err := http.Get("http://" + a.diagnostics.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(metrics.Body)
	metrics.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "roster_loads_total")
}

func TestClose_Idempotent(t *testing.T) {
	files := testutil.WriteRoster(t)
	a := newTestApp(t, testConfig(files.Dir))

	assert.NoError(t, a.Close(context.Background()))
	assert.NoError(t, a.Close(context.Background()))
}

func TestNewApplication_WorkbookSourceFallback(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWorkbook(t, filepath.Join(dir, "students.xlsx"), testutil.SplitLines(testutil.IdentityLines, ";"))
	testutil.WriteLines(t, dir, "marks.csv", testutil.MarksLines...)

	a := newTestApp(t, testConfig(dir))

	assert.Equal(t, filepath.Join(dir, "students.xlsx"), a.Paths.IdentityFile)
	assert.Equal(t, 4, a.Store.Len())
	assert.Equal(t, 1.0, a.Weights.Weight("Math"))
}
