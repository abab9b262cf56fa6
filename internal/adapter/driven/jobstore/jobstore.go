// Package jobstore persists queued monitoring jobs in SQLite.
package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

// Job lifecycle statuses.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one queued unit of work submitted through Slack or the CLI.
type Job struct {
	JobID       string     `gorm:"primaryKey;column:job_id" json:"job_id"`
	Kind        string     `gorm:"column:kind;index" json:"kind"`
	PayloadJSON string     `gorm:"column:payload_json" json:"payload_json"`
	Status      string     `gorm:"column:status;index" json:"status"`
	RequestedBy string     `gorm:"column:requested_by" json:"requested_by"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Summary     string     `gorm:"column:summary" json:"summary,omitempty"`
	Error       string     `gorm:"column:error" json:"error,omitempty"`
}

// TableName fixes the table name regardless of gorm pluralization.
func (Job) TableName() string { return "jobs" }

// Store wraps the jobs table.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (and migrates) the SQLite job store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening job store %s: %w", path, err)
	}
	return NewStore(db)
}

// NewStore migrates the jobs table on an existing connection.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Job{}); err != nil {
		return nil, fmt.Errorf("error migrating job store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Create queues a new job and returns it.
func (s *Store) Create(kind string, payload map[string]string, requestedBy string) (*Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding job payload: %w", err)
	}

	job := &Job{
		JobID:       uuid.NewString(),
		Kind:        kind,
		PayloadJSON: string(payloadJSON),
		Status:      StatusQueued,
		RequestedBy: requestedBy,
		CreatedAt:   s.now().UTC(),
	}
	if tx := s.db.Create(job); tx.Error != nil {
		return nil, fmt.Errorf("error creating job: %w", tx.Error)
	}
	return job, nil
}

// Get loads one job by id.
func (s *Store) Get(jobID string) (*Job, error) {
	var job Job
	tx := s.db.Where("job_id = ?", jobID).First(&job)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrJobNotFound, jobID)
		}
		return nil, tx.Error
	}
	return &job, nil
}

// NextQueued returns the oldest queued job, or nil when the queue is empty.
func (s *Store) NextQueued() (*Job, error) {
	var job Job
	tx := s.db.Where("status = ?", StatusQueued).Order("created_at asc").First(&job)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &job, nil
}

// Payload decodes the job payload.
func (j *Job) Payload() (map[string]string, error) {
	payload := map[string]string{}
	if j.PayloadJSON == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(j.PayloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("error decoding job payload: %w", err)
	}
	return payload, nil
}

// SetRunning marks the job as running and stamps started_at.
func (s *Store) SetRunning(jobID string) error {
	now := s.now().UTC()
	return s.update(jobID, map[string]interface{}{
		"status":     StatusRunning,
		"started_at": &now,
	})
}

// SetCompleted marks the job as completed with its summary.
func (s *Store) SetCompleted(jobID, summary string) error {
	now := s.now().UTC()
	return s.update(jobID, map[string]interface{}{
		"status":       StatusCompleted,
		"completed_at": &now,
		"summary":      summary,
	})
}

// SetFailed marks the job as failed with the error message.
func (s *Store) SetFailed(jobID, message string) error {
	now := s.now().UTC()
	return s.update(jobID, map[string]interface{}{
		"status":       StatusFailed,
		"completed_at": &now,
		"error":        message,
	})
}

func (s *Store) update(jobID string, fields map[string]interface{}) error {
	tx := s.db.Model(&Job{}).Where("job_id = ?", jobID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", types.ErrJobNotFound, jobID)
	}
	return nil
}

// PruneBefore deletes finished jobs created before the cutoff.
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	tx := s.db.Where("created_at < ? AND status IN ?", cutoff, []string{StatusCompleted, StatusFailed}).Delete(&Job{})
	return tx.RowsAffected, tx.Error
}
