package models

import (
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
)

// SyncJobModel is the persistence model for bulk.SyncJob
type SyncJobModel struct {
	AggregateModel
	Kind         bulk.SyncKind  `gorm:"type:varchar(30);not null"`
	OperationID  string         `gorm:"type:varchar(255);not null;index"`
	Status       bulk.JobStatus `gorm:"type:varchar(20);not null;index"`
	RemoteStatus string         `gorm:"type:varchar(20)"`
	ResultURL    string         `gorm:"type:text"`
	ObjectCount  int64          `gorm:"not null;default:0"`
	PollCount    int            `gorm:"not null;default:0"`
	ArchiveKey   string         `gorm:"type:varchar(500)"`
	SummaryJSON  string         `gorm:"type:text;column:summary"`
	ErrorMessage string         `gorm:"type:text"`
	StartedAt    time.Time      `gorm:"not null"`
	Deadline     time.Time      `gorm:"not null"`
	LastPolledAt *time.Time
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (SyncJobModel) TableName() string {
	return "bulk_sync_jobs"
}

// ToDomain converts the model to a domain SyncJob. A summary that fails to
// parse is dropped rather than failing the load.
func (m *SyncJobModel) ToDomain() *bulk.SyncJob {
	job := &bulk.SyncJob{
		BaseAggregateRoot: m.AggregateModel.aggregate(),
		Kind:              m.Kind,
		OperationID:       m.OperationID,
		Status:            m.Status,
		RemoteStatus:      m.RemoteStatus,
		ResultURL:         m.ResultURL,
		ObjectCount:       m.ObjectCount,
		PollCount:         m.PollCount,
		ArchiveKey:        m.ArchiveKey,
		ErrorMessage:      m.ErrorMessage,
		StartedAt:         m.StartedAt,
		Deadline:          m.Deadline,
		LastPolledAt:      m.LastPolledAt,
		CompletedAt:       m.CompletedAt,
	}
	_ = job.SetSummaryFromJSON(m.SummaryJSON)
	return job
}

// SyncJobModelFromDomain creates a model from a domain SyncJob
func SyncJobModelFromDomain(j *bulk.SyncJob) (*SyncJobModel, error) {
	summary, err := j.SummaryJSON()
	if err != nil {
		return nil, err
	}
	m := &SyncJobModel{
		Kind:         j.Kind,
		OperationID:  j.OperationID,
		Status:       j.Status,
		RemoteStatus: j.RemoteStatus,
		ResultURL:    j.ResultURL,
		ObjectCount:  j.ObjectCount,
		PollCount:    j.PollCount,
		ArchiveKey:   j.ArchiveKey,
		SummaryJSON:  summary,
		ErrorMessage: j.ErrorMessage,
		StartedAt:    j.StartedAt,
		Deadline:     j.Deadline,
		LastPolledAt: j.LastPolledAt,
		CompletedAt:  j.CompletedAt,
	}
	m.AggregateModel = aggregateModelOf(j.BaseAggregateRoot)
	return m, nil
}
