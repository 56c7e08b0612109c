package storage_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcreports/xcallure/internal/model"
	"github.com/xcreports/xcallure/internal/storage"
)

func report(uuid, historyID string, status model.Status) model.TestResult {
	return model.TestResult{
		UUID:      uuid,
		HistoryID: historyID,
		Name:      "testLogin()",
		FullName:  "LoginTests/testLogin()",
		Status:    status,
		Labels: []model.Label{
			{Name: "suite", Value: "LoginTests"},
		},
		Steps: []model.StepResult{
			{Name: "Tap login", Status: model.StatusPassed},
		},
		Start: 1680350400000,
		Stop:  1680350402500,
	}
}

func TestInsertAndLoadReport(t *testing.T) {
	s, err := storage.New("", slog.Default())
	require.NoError(t, err)
	defer close(s)

	ctx := context.Background()

	want := report("a1", "h1", model.StatusPassed)

	err = s.InsertReport(ctx, want)
	require.NoError(t, err)

	got, err := s.LoadReport(ctx, "a1")
	require.NoError(t, err)

	assert.Equal(t, want, got, "the report survives the compressed round trip")
}

func TestLoadMissingReportReturnsNotFound(t *testing.T) {
	s, err := storage.New("", slog.Default())
	require.NoError(t, err)
	defer close(s)

	_, err = s.LoadReport(context.Background(), "missing")

	assert.ErrorIs(t, err, model.NotFoundError{})
}

func TestLoadReportsByHistoryID(t *testing.T) {
	s, err := storage.New("", slog.Default())
	require.NoError(t, err)
	defer close(s)

	ctx := context.Background()

	require.NoError(t, s.InsertReport(ctx, report("a1", "h1", model.StatusPassed)))
	require.NoError(t, s.InsertReport(ctx, report("a2", "h1", model.StatusFailed)))
	require.NoError(t, s.InsertReport(ctx, report("b1", "h2", model.StatusPassed)))

	reports, err := s.LoadReportsByHistoryID(ctx, "h1")
	require.NoError(t, err)

	assert.Len(t, reports, 2)
}

func TestDeleteReportsBefore(t *testing.T) {
	s, err := storage.New("", slog.Default())
	require.NoError(t, err)
	defer close(s)

	ctx := context.Background()

	require.NoError(t, s.InsertReport(ctx, report("a1", "h1", model.StatusPassed)))

	deleted, err := s.DeleteReportsBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted, "fresh reports are kept")

	deleted, err = s.DeleteReportsBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = s.LoadReport(ctx, "a1")
	assert.ErrorIs(t, err, model.NotFoundError{})
}

func close(s *storage.Storage) {
	_ = s.Close()
}
