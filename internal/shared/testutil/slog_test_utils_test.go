package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
	})

	t.Run("keeps With attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "loader")).
			WithGroup("src").
			Warn("weights missing", slog.String("path", "w.csv"))

		AssertLogContains(t, handler, slog.LevelWarn, "weights missing")
		AssertLogAttr(t, handler, "component", "loader")
		AssertLogAttr(t, handler, "src.path", "w.csv")
	})

	t.Run("derived handlers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("a", 1).Info("one")
		logger.Info("two")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
		AssertNoErrors(t, handler)
	})
}

func TestWriteRoster(t *testing.T) {
	files := WriteRoster(t)

	for _, p := range []string{files.Identity, files.Marks, files.Weights} {
		assert.FileExists(t, p)
	}

	path := WriteWorkbook(t, files.Dir+"/students.xlsx", SplitLines(IdentityLines, ";"))
	require.FileExists(t, path)
}
