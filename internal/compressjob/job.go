// Package compressjob wraps the compress pipeline (internal/compress) in an
// asynchronous, persisted job: submit now, poll status later, with retry on
// failure. It plays the role the teacher's internal/imaging.Service played
// for image derivatives, adapted to a single compression request/result
// instead of a fan-out of renditions.
package compressjob

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"imagecompressor/internal/compress"
)

// Status mirrors the teacher's ProcessingStatus enum, trimmed to the states
// a single compression job passes through.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// OptionsValue makes compress.Options a JSONB column.
type OptionsValue compress.Options

func (o OptionsValue) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *OptionsValue) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("type assertion to []byte failed")
	}
	return json.Unmarshal(b, o)
}

// Job is a single compression job: one source upload, one set of options,
// one result. Generation increments each time the same upload key is
// resubmitted (re-compress with different options), the way the teacher's
// ImageAsset.Version did for reprocessing.
type Job struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	UserID         uuid.UUID    `json:"user_id" db:"user_id"`
	UploadKey      string       `json:"upload_key" db:"upload_key"`
	ContentHash    string       `json:"content_hash" db:"content_hash"`
	Options        OptionsValue `json:"options" db:"options"`
	Generation     int          `json:"generation" db:"generation"`
	Status         Status       `json:"status" db:"status"`
	Attempts       int          `json:"attempts" db:"attempts"`
	LastError      string       `json:"last_error,omitempty" db:"last_error"`
	ResultKey      string       `json:"result_key,omitempty" db:"result_key"`
	ResultFormat   string       `json:"result_format,omitempty" db:"result_format"`
	ResultWidth    int          `json:"result_width,omitempty" db:"result_width"`
	ResultHeight   int          `json:"result_height,omitempty" db:"result_height"`
	ResultSize     int          `json:"result_size,omitempty" db:"result_size"`
	OriginalSize   int          `json:"original_size,omitempty" db:"original_size"`
	Warning        string       `json:"warning,omitempty" db:"warning"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
}

// RepositoryInterface defines the persistence operations a Service needs,
// mirrored from the teacher's ImagingRepositoryInterface shape.
type RepositoryInterface interface {
	CreateJob(job *Job) error
	UpdateJob(job *Job) error
	GetJobByID(id uuid.UUID) (*Job, error)
	GetPendingJobs() ([]Job, error)
}

// R2ClientInterface is the subset of storage.R2Client the service uses,
// named identically to the teacher's so swapping in a fake for tests is a
// drop-in.
type R2ClientInterface interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
