package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsAttr("key", "value"))
		AssertLogContains(t, handler, slog.LevelInfo, "test message")
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("child loggers share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "pipeline")).Warn("rows dropped")

		AssertLogContains(t, handler, slog.LevelWarn, "rows dropped")
		assert.True(t, handler.ContainsAttr("component", "pipeline"))
	})
}

func TestFixtures(t *testing.T) {
	history := HistoryTable()
	current := CurrentTable()

	assert.Equal(t, HistoryColumns, history.Columns)
	assert.Equal(t, 5, history.Len())
	assert.Equal(t, 3, current.Len())
	assert.NotEmpty(t, WorkbookBytes(t, HistoryColumns, HistoryRows()))
	assert.Contains(t, string(CSVBytes(t, CurrentColumns, CurrentRows())), "Ana Souza")
}
