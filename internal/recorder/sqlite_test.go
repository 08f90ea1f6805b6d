package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"VegeNavi/internal/model"
)

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	evt := &RunEvent{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now(),
		Duration:       1500 * time.Millisecond,
		StatusCode:     200,
		Message:        "CSV file successfully processed",
		HistoricalRows: 40,
		RecentRows:     38,
		TrendItems:     38,
		RateItems:      35,
		LatestPeriod:   "24/5_上",
	}
	require.NoError(t, r.RecordRun(evt))
	assert.Error(t, r.RecordRun(evt), "run ids are unique")

	n, err := r.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rates := model.Rates{
		"キャベツ": {model.RateVsLastMonth: 1.5, model.RateVsNormalYear: 1.25},
		"トマト":  {model.RateVsNormalYear: 1.2},
	}
	require.NoError(t, r.RecordRates(evt.RunID, evt.LatestPeriod, rates))

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM rate_snapshots WHERE run_id = ?`, evt.RunID).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestSQLiteRecorder_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&RunEvent{RunID: uuid.NewString(), StartedAt: time.Now(), StatusCode: 500}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()
	n, err := r.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSortedRates(t *testing.T) {
	rows := sortedRates(model.Rates{
		"b": {"y": 2, "x": 1},
		"a": {"z": 3},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, rateRow{"a", "z", 3}, rows[0])
	assert.Equal(t, rateRow{"b", "x", 1}, rows[1])
	assert.Equal(t, rateRow{"b", "y", 2}, rows[2])
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunEvent{}))
	assert.NoError(t, r.RecordRates("id", "24/5_上", nil))
	assert.NoError(t, r.Close())
}
