package bulk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOperationID = "gid://shopify/BulkOperation/720918"

func TestJobStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status JobStatus
		want   bool
	}{
		{"started", JobStatusStarted, false},
		{"polling", JobStatusPolling, false},
		{"completed", JobStatusCompleted, true},
		{"failed", JobStatusFailed, true},
		{"expired", JobStatusExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.status.IsValid())
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}

	assert.False(t, JobStatus("unknown").IsValid())
}

func TestNewSyncJob(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("creates started job with deadline", func(t *testing.T) {
		job, err := NewSyncJob(SyncKindProducts, testOperationID, 2*time.Hour, now)
		require.NoError(t, err)

		assert.Equal(t, JobStatusStarted, job.Status)
		assert.Equal(t, testOperationID, job.OperationID)
		assert.Equal(t, now.Add(2*time.Hour), job.Deadline)
		assert.True(t, job.IsActive())
		assert.Equal(t, 1, job.GetVersion())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewSyncJob("orders", testOperationID, time.Hour, now)
		assert.Error(t, err)

		_, err = NewSyncJob(SyncKindProducts, "", time.Hour, now)
		assert.Error(t, err)

		_, err = NewSyncJob(SyncKindProducts, testOperationID, 0, now)
		assert.Error(t, err)
	})
}

func TestSyncJob_Lifecycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("poll then complete", func(t *testing.T) {
		job, err := NewSyncJob(SyncKindProducts, testOperationID, time.Hour, now)
		require.NoError(t, err)

		require.NoError(t, job.RecordPoll("RUNNING", 120, now.Add(5*time.Second)))
		require.NoError(t, job.RecordPoll("RUNNING", 450, now.Add(10*time.Second)))
		assert.Equal(t, JobStatusPolling, job.Status)
		assert.Equal(t, 2, job.PollCount)
		assert.Equal(t, int64(450), job.ObjectCount)

		summary := SyncSummary{Products: 3, Variants: 9, VendorsCreated: 1}
		require.NoError(t, job.Complete("https://storage.example/result.jsonl", "jsonl/products.jsonl", summary, now.Add(time.Minute)))
		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, time.Minute, job.Duration(now.Add(time.Hour)))
		assert.False(t, job.IsActive())

		assert.Error(t, job.RecordPoll("RUNNING", 0, now))
		assert.Error(t, job.Fail("late", now))
	})

	t.Run("fail", func(t *testing.T) {
		job, err := NewSyncJob(SyncKindProducts, testOperationID, time.Hour, now)
		require.NoError(t, err)

		require.NoError(t, job.Fail("bulk operation ended with status FAILED", now))
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.NotNil(t, job.CompletedAt)
		assert.Error(t, job.Expire(now))
	})

	t.Run("expire after deadline", func(t *testing.T) {
		job, err := NewSyncJob(SyncKindProducts, testOperationID, time.Hour, now)
		require.NoError(t, err)

		assert.False(t, job.IsExpired(now.Add(59*time.Minute)))
		assert.True(t, job.IsExpired(now.Add(time.Hour)))

		require.NoError(t, job.Expire(now.Add(time.Hour)))
		assert.Equal(t, JobStatusExpired, job.Status)
		assert.Contains(t, job.ErrorMessage, "1h0m0s")
	})
}

func TestSyncJob_SummaryJSON(t *testing.T) {
	job, err := NewSyncJob(SyncKindProducts, testOperationID, time.Hour, time.Now())
	require.NoError(t, err)

	s, err := job.SummaryJSON()
	require.NoError(t, err)
	assert.Empty(t, s)

	require.NoError(t, job.SetSummaryFromJSON(`{"products":4,"vendors_created":2}`))
	require.NotNil(t, job.Summary)
	assert.Equal(t, 4, job.Summary.Products)
	assert.Equal(t, 2, job.Summary.VendorsCreated)

	assert.Error(t, job.SetSummaryFromJSON("{"))
}
