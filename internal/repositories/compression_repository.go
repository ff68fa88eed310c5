package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"imagecompressor/internal/compressjob"
	"imagecompressor/internal/database"
)

// CompressionRepository persists compressjob.Job rows, adapted from the
// teacher's ImagingRepository: image_assets/image_processing_jobs collapse
// into a single compression_jobs table carrying a generation counter instead
// of a separate derivatives table, since one job produces one result blob.
type CompressionRepository struct {
	db  *database.DB
	ctx context.Context
}

// NewCompressionRepository creates a repository bound to
// context.Background(); callers needing cancellation should use the *Ctx
// variants below.
func NewCompressionRepository(db *database.DB) *CompressionRepository {
	return &CompressionRepository{db: db, ctx: context.Background()}
}

func (r *CompressionRepository) CreateJob(job *compressjob.Job) error {
	return r.CreateJobCtx(r.ctx, job)
}

func (r *CompressionRepository) CreateJobCtx(ctx context.Context, job *compressjob.Job) error {
	query := `
		INSERT INTO compression_jobs (
			id, user_id, upload_key, content_hash, options, generation, status,
			attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.UserID, job.UploadKey, job.ContentHash, job.Options,
		job.Generation, job.Status, job.Attempts, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("create compression job: %w", err)
	}
	return nil
}

func (r *CompressionRepository) UpdateJob(job *compressjob.Job) error {
	return r.UpdateJobCtx(r.ctx, job)
}

func (r *CompressionRepository) UpdateJobCtx(ctx context.Context, job *compressjob.Job) error {
	query := `
		UPDATE compression_jobs SET
			content_hash = $1, status = $2, attempts = $3, last_error = $4,
			result_key = $5, result_format = $6, result_width = $7,
			result_height = $8, result_size = $9, original_size = $10,
			warning = $11, completed_at = $12
		WHERE id = $13`

	_, err := r.db.ExecContext(ctx, query,
		job.ContentHash, job.Status, job.Attempts, job.LastError,
		job.ResultKey, job.ResultFormat, job.ResultWidth, job.ResultHeight,
		job.ResultSize, job.OriginalSize, job.Warning, job.CompletedAt, job.ID)
	if err != nil {
		return fmt.Errorf("update compression job: %w", err)
	}
	return nil
}

func (r *CompressionRepository) GetJobByID(id uuid.UUID) (*compressjob.Job, error) {
	return r.GetJobByIDCtx(r.ctx, id)
}

func (r *CompressionRepository) GetJobByIDCtx(ctx context.Context, id uuid.UUID) (*compressjob.Job, error) {
	var job compressjob.Job
	query := `
		SELECT id, user_id, upload_key, COALESCE(content_hash, '') as content_hash,
			options, generation, status, attempts, COALESCE(last_error, '') as last_error,
			COALESCE(result_key, '') as result_key, COALESCE(result_format, '') as result_format,
			result_width, result_height, result_size, original_size,
			COALESCE(warning, '') as warning, created_at, completed_at
		FROM compression_jobs WHERE id = $1`

	err := r.db.GetContext(ctx, &job, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get compression job: %w", err)
	}
	return &job, nil
}

func (r *CompressionRepository) GetPendingJobs() ([]compressjob.Job, error) {
	return r.GetPendingJobsCtx(r.ctx)
}

func (r *CompressionRepository) GetPendingJobsCtx(ctx context.Context) ([]compressjob.Job, error) {
	var jobs []compressjob.Job
	query := `
		SELECT id, user_id, upload_key, COALESCE(content_hash, '') as content_hash,
			options, generation, status, attempts, COALESCE(last_error, '') as last_error,
			COALESCE(result_key, '') as result_key, COALESCE(result_format, '') as result_format,
			result_width, result_height, result_size, original_size,
			COALESCE(warning, '') as warning, created_at, completed_at
		FROM compression_jobs WHERE status = 'pending' ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &jobs, query)
	if err != nil {
		return nil, fmt.Errorf("get pending compression jobs: %w", err)
	}
	return jobs, nil
}

// GetJobsByUser lists recent jobs for a user, newest first, for a user-facing
// history view.
func (r *CompressionRepository) GetJobsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]compressjob.Job, error) {
	var jobs []compressjob.Job
	query := `
		SELECT id, user_id, upload_key, COALESCE(content_hash, '') as content_hash,
			options, generation, status, attempts, COALESCE(last_error, '') as last_error,
			COALESCE(result_key, '') as result_key, COALESCE(result_format, '') as result_format,
			result_width, result_height, result_size, original_size,
			COALESCE(warning, '') as warning, created_at, completed_at
		FROM compression_jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &jobs, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get user compression jobs: %w", err)
	}
	return jobs, nil
}
