package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// SyncKind identifies which bulk export a job runs
type SyncKind string

const (
	SyncKindProducts SyncKind = "products"
)

// IsValid checks if the kind is valid
func (k SyncKind) IsValid() bool {
	return k == SyncKindProducts
}

// JobStatus represents the local lifecycle of a bulk sync job
type JobStatus string

const (
	JobStatusStarted   JobStatus = "started"
	JobStatusPolling   JobStatus = "polling"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusExpired   JobStatus = "expired"
)

// IsValid checks if the status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusStarted, JobStatusPolling, JobStatusCompleted,
		JobStatusFailed, JobStatusExpired:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusExpired
}

// SyncSummary counts what a completed job produced
type SyncSummary struct {
	Products           int `json:"products"`
	Variants           int `json:"variants"`
	StatesCreated      int `json:"states_created"`
	TownsCreated       int `json:"towns_created"`
	VendorsCreated     int `json:"vendors_created"`
	VendorsUpdated     int `json:"vendors_updated"`
	SourceNamesAdded   int `json:"source_names_added"`
	ConflictsResolved  int `json:"conflicts_resolved"`
	SkippedProducts    int `json:"skipped_products"`
	SkippedVendors     int `json:"skipped_vendors"`
	SkippedSourceNames int `json:"skipped_source_names"`
}

// SyncJob is the durable record of a started bulk operation. Polling can be
// resumed from it after a restart because the remote operation id is persisted.
type SyncJob struct {
	shared.BaseAggregateRoot
	Kind         SyncKind     `json:"kind"`
	OperationID  string       `json:"operation_id"`
	Status       JobStatus    `json:"status"`
	RemoteStatus string       `json:"remote_status,omitempty"`
	ResultURL    string       `json:"result_url,omitempty"`
	ObjectCount  int64        `json:"object_count"`
	PollCount    int          `json:"poll_count"`
	ArchiveKey   string       `json:"archive_key,omitempty"`
	Summary      *SyncSummary `json:"summary,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	StartedAt    time.Time    `json:"started_at"`
	Deadline     time.Time    `json:"deadline"`
	LastPolledAt *time.Time   `json:"last_polled_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// NewSyncJob creates a job for a bulk operation the remote side has accepted
func NewSyncJob(kind SyncKind, operationID string, maxDuration time.Duration, now time.Time) (*SyncJob, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SYNC_KIND", fmt.Sprintf("Invalid sync kind: %s", kind))
	}
	if operationID == "" {
		return nil, shared.NewDomainError("INVALID_OPERATION_ID", "Operation ID cannot be empty")
	}
	if maxDuration <= 0 {
		return nil, shared.NewDomainError("INVALID_MAX_DURATION", "Max duration must be positive")
	}

	job := &SyncJob{
		BaseAggregateRoot: shared.NewBaseAggregateRootAt(now),
		Kind:              kind,
		OperationID:       operationID,
		Status:            JobStatusStarted,
		StartedAt:         now,
		Deadline:          now.Add(maxDuration),
	}
	return job, nil
}

// RecordPoll stores the remote status of a poll that found the operation still pending
func (j *SyncJob) RecordPoll(remoteStatus string, objectCount int64, now time.Time) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot poll from terminal state: %s", j.Status))
	}

	j.Status = JobStatusPolling
	j.RemoteStatus = remoteStatus
	j.ObjectCount = objectCount
	j.PollCount++
	j.LastPolledAt = &now
	j.Bump(now)

	return nil
}

// Complete marks the job as completed once the export has been archived and reconciled
func (j *SyncJob) Complete(resultURL, archiveKey string, summary SyncSummary, now time.Time) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from terminal state: %s", j.Status))
	}

	j.Status = JobStatusCompleted
	j.RemoteStatus = "COMPLETED"
	j.ResultURL = resultURL
	j.ArchiveKey = archiveKey
	j.Summary = &summary
	j.CompletedAt = &now
	j.Bump(now)

	return nil
}

// Fail marks the job as failed
func (j *SyncJob) Fail(reason string, now time.Time) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", j.Status))
	}

	j.Status = JobStatusFailed
	j.ErrorMessage = reason
	j.CompletedAt = &now
	j.Bump(now)

	return nil
}

// Expire marks a job that outlived its deadline. The remote operation is
// left alone; it finishes or fails on its own.
func (j *SyncJob) Expire(now time.Time) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire from terminal state: %s", j.Status))
	}

	j.Status = JobStatusExpired
	j.ErrorMessage = fmt.Sprintf("bulk operation did not complete within %s", j.Deadline.Sub(j.StartedAt))
	j.CompletedAt = &now
	j.Bump(now)

	return nil
}

// IsActive returns true while the job still needs polling
func (j *SyncJob) IsActive() bool {
	return !j.Status.IsTerminal()
}

// IsExpired returns true if the deadline has passed
func (j *SyncJob) IsExpired(now time.Time) bool {
	return !now.Before(j.Deadline)
}

// Duration returns how long the job ran, or has been running
func (j *SyncJob) Duration(now time.Time) time.Duration {
	end := now
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	return end.Sub(j.StartedAt)
}

// SummaryJSON returns the summary as a JSON string
func (j *SyncJob) SummaryJSON() (string, error) {
	if j.Summary == nil {
		return "", nil
	}
	data, err := json.Marshal(j.Summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sync summary: %w", err)
	}
	return string(data), nil
}

// SetSummaryFromJSON parses the summary from a JSON string
func (j *SyncJob) SetSummaryFromJSON(jsonStr string) error {
	if jsonStr == "" {
		j.Summary = nil
		return nil
	}
	var summary SyncSummary
	if err := json.Unmarshal([]byte(jsonStr), &summary); err != nil {
		return fmt.Errorf("failed to unmarshal sync summary: %w", err)
	}
	j.Summary = &summary
	return nil
}
