package compressjob

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"imagecompressor/internal/compress"
	"imagecompressor/internal/imaging"
)

// Service manages asynchronous compression jobs: it persists the job,
// dispatches it onto the shared worker pool, and retries on failure with
// exponential backoff. Adapted from the teacher's internal/imaging.Service,
// trimmed from a multi-derivative fan-out to a single compress() call.
type Service struct {
	engine *compress.Engine
	r2     R2ClientInterface
	repo   RepositoryInterface

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a compression job service bound to a shared engine
// (and therefore a shared worker pool).
func NewService(engine *compress.Engine, r2 R2ClientInterface, repo RepositoryInterface) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		engine: engine,
		r2:     r2,
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
	}

	go s.resumePendingJobs()

	return s
}

func (s *Service) resumePendingJobs() {
	time.Sleep(1 * time.Second)

	jobs, err := s.repo.GetPendingJobs()
	if err != nil {
		slog.Error("failed to get pending compression jobs", "error", err)
		return
	}

	slog.Info("found pending compression jobs", "count", len(jobs))
	for i := range jobs {
		job := jobs[i]
		s.dispatch(&job)
	}
}

// Stop cancels in-flight work and waits for it to unwind. It does not stop
// the shared worker pool, which outlives any one Service.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Submit persists a new compression job and dispatches it onto the worker
// pool at normal priority. It returns immediately with the job ID; the
// caller polls Get for the result.
func (s *Service) Submit(userID uuid.UUID, uploadKey string, opts compress.Options) (uuid.UUID, error) {
	job := &Job{
		ID:         uuid.New(),
		UserID:     userID,
		UploadKey:  uploadKey,
		Options:    OptionsValue(opts),
		Generation: 1,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateJob(job); err != nil {
		return uuid.Nil, fmt.Errorf("create compression job: %w", err)
	}

	s.dispatch(job)
	return job.ID, nil
}

// Resubmit queues a fresh generation of an existing job with new options,
// the way the teacher's QueueReprocessing revisited an existing asset.
func (s *Service) Resubmit(id uuid.UUID, opts compress.Options) (uuid.UUID, error) {
	prev, err := s.repo.GetJobByID(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup job: %w", err)
	}
	if prev == nil {
		return uuid.Nil, fmt.Errorf("job not found")
	}

	job := &Job{
		ID:         uuid.New(),
		UserID:     prev.UserID,
		UploadKey:  prev.UploadKey,
		Options:    OptionsValue(opts),
		Generation: prev.Generation + 1,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateJob(job); err != nil {
		return uuid.Nil, fmt.Errorf("create compression job: %w", err)
	}

	s.dispatch(job)
	return job.ID, nil
}

func (s *Service) dispatch(job *Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.process(job); err != nil {
			slog.Error("compression job failed", "job_id", job.ID, "error", err)
			s.handleFailure(job, err)
		}
	}()
}

// process runs the full job lifecycle: download, compress (via the shared
// worker pool), upload the result, update the record.
func (s *Service) process(job *Job) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	job.Status = StatusProcessing
	if err := s.repo.UpdateJob(job); err != nil {
		slog.Warn("failed to mark job processing", "job_id", job.ID, "error", err)
	}

	data, err := s.r2.GetObject(ctx, job.UploadKey)
	if err != nil {
		return fmt.Errorf("download upload: %w", err)
	}

	validated, err := imaging.ValidateUpload(data, imaging.DefaultUploadLimits)
	if err != nil {
		return fmt.Errorf("validate upload: %w", err)
	}
	job.ContentHash = validated.ContentHash
	job.OriginalSize = len(data)

	result, err := s.engine.Compress(compress.Request{
		ID:      job.ID.String(),
		Bytes:   data,
		Options: compress.Options(job.Options),
	})
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	resultKey := fmt.Sprintf("compressed/%s/%s/v%d.%s",
		job.ContentHash[:2], job.ContentHash, job.Generation, result.Format)

	if err := s.r2.PutObject(ctx, resultKey, result.Blob, contentTypeFor(result.Format)); err != nil {
		return fmt.Errorf("upload result: %w", err)
	}

	job.Status = StatusReady
	job.ResultKey = resultKey
	job.ResultFormat = string(result.Format)
	job.ResultWidth = result.Width
	job.ResultHeight = result.Height
	job.ResultSize = len(result.Blob)
	job.Warning = result.Warning
	now := time.Now()
	job.CompletedAt = &now

	if err := s.repo.UpdateJob(job); err != nil {
		return fmt.Errorf("update job record: %w", err)
	}

	slog.Info("compression job ready", "job_id", job.ID, "format", result.Format,
		"original_bytes", job.OriginalSize, "result_bytes", job.ResultSize)
	return nil
}

// handleFailure retries with the teacher's exponential backoff (attempts^2
// seconds) up to 3 attempts, then marks the job permanently failed.
func (s *Service) handleFailure(job *Job, cause error) {
	job.Attempts++
	job.LastError = cause.Error()

	if job.Attempts < 3 {
		job.Status = StatusPending
		if err := s.repo.UpdateJob(job); err != nil {
			slog.Error("failed to persist retry state", "job_id", job.ID, "error", err)
		}
		delay := time.Duration(job.Attempts*job.Attempts) * time.Second
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			select {
			case <-time.After(delay):
				s.dispatch(job)
			case <-s.ctx.Done():
			}
		}()
		return
	}

	job.Status = StatusFailed
	if err := s.repo.UpdateJob(job); err != nil {
		slog.Error("failed to persist permanent failure", "job_id", job.ID, "error", err)
	}
}

// Get returns a job by ID for status polling.
func (s *Service) Get(id uuid.UUID) (*Job, bool) {
	job, err := s.repo.GetJobByID(id)
	if err != nil {
		slog.Error("get compression job failed", "id", id, "error", err)
		return nil, false
	}
	if job == nil {
		return nil, false
	}
	return job, true
}

// ResultURL returns the public CDN-style URL pattern for a ready job.
func (s *Service) ResultURL(job *Job) string {
	return fmt.Sprintf("/img/%s/%d", job.ContentHash, job.Generation)
}

func contentTypeFor(format compress.Format) string {
	switch format {
	case compress.FormatJPEG:
		return "image/jpeg"
	case compress.FormatPNG:
		return "image/png"
	case compress.FormatWebP:
		return "image/webp"
	case compress.FormatAVIF:
		return "image/avif"
	case compress.FormatJXL:
		return "image/jxl"
	case compress.FormatGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
