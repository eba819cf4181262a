package dto

import (
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
)

// SyncJobResponse is the API view of a bulk sync job
type SyncJobResponse struct {
	ID           string            `json:"id"`
	Kind         string            `json:"kind"`
	OperationID  string            `json:"operation_id"`
	Status       string            `json:"status"`
	RemoteStatus string            `json:"remote_status,omitempty"`
	ObjectCount  int64             `json:"object_count"`
	PollCount    int               `json:"poll_count"`
	ArchiveKey   string            `json:"archive_key,omitempty"`
	Summary      *bulk.SyncSummary `json:"summary,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	Deadline     time.Time         `json:"deadline"`
	LastPolledAt *time.Time        `json:"last_polled_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Version      int               `json:"version"`
}

// NewSyncJobResponse maps a job to its API view. The signed result URL is
// short-lived and stays internal.
func NewSyncJobResponse(job *bulk.SyncJob) SyncJobResponse {
	return SyncJobResponse{
		ID:           job.ID.String(),
		Kind:         string(job.Kind),
		OperationID:  job.OperationID,
		Status:       string(job.Status),
		RemoteStatus: job.RemoteStatus,
		ObjectCount:  job.ObjectCount,
		PollCount:    job.PollCount,
		ArchiveKey:   job.ArchiveKey,
		Summary:      job.Summary,
		ErrorMessage: job.ErrorMessage,
		StartedAt:    job.StartedAt,
		Deadline:     job.Deadline,
		LastPolledAt: job.LastPolledAt,
		CompletedAt:  job.CompletedAt,
		Version:      job.Version,
	}
}

// NewSyncJobResponses maps a page of jobs
func NewSyncJobResponses(jobs []*bulk.SyncJob) []SyncJobResponse {
	out := make([]SyncJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, NewSyncJobResponse(job))
	}
	return out
}
