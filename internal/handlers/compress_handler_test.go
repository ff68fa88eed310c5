package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imagecompressor/internal/compress"
	"imagecompressor/internal/compressjob"
)

type stubRepo struct {
	jobs map[uuid.UUID]*compressjob.Job
}

func newStubRepo() *stubRepo {
	return &stubRepo{jobs: make(map[uuid.UUID]*compressjob.Job)}
}

func (r *stubRepo) CreateJob(job *compressjob.Job) error {
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *stubRepo) UpdateJob(job *compressjob.Job) error {
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *stubRepo) GetJobByID(id uuid.UUID) (*compressjob.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r *stubRepo) GetPendingJobs() ([]compressjob.Job, error) {
	return nil, nil
}

type stubR2 struct{}

func (stubR2) GetObject(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (stubR2) PutObject(ctx context.Context, key string, data []byte, ct string) error {
	return nil
}
func (stubR2) DeleteObject(ctx context.Context, key string) error { return nil }
func (stubR2) GetPublicURL(key string) string                     { return "https://example.test/" + key }

func setupRouter(h *CompressHandler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/compress", h.Submit)
	r.POST("/compress/:id/resubmit", h.Resubmit)
	r.GET("/compress/:id", h.GetStatus)
	return r
}

func TestCompressHandlerSubmitRejectsForeignUploadKey(t *testing.T) {
	userID := uuid.New()
	repo := newStubRepo()
	engine := compress.NewEngine()
	defer engine.Shutdown()
	svc := compressjob.NewService(engine, stubR2{}, repo)
	defer svc.Stop()

	h := NewCompressHandler(nil, svc)
	router := setupRouter(h, userID)

	body, _ := json.Marshal(SubmitRequest{UploadKey: "uploads/tmp/someone-else/file.png"})
	req := httptest.NewRequest(http.MethodPost, "/compress", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCompressHandlerGetStatusUnknownJob(t *testing.T) {
	userID := uuid.New()
	repo := newStubRepo()
	engine := compress.NewEngine()
	defer engine.Shutdown()
	svc := compressjob.NewService(engine, stubR2{}, repo)
	defer svc.Stop()

	h := NewCompressHandler(nil, svc)
	router := setupRouter(h, userID)

	req := httptest.NewRequest(http.MethodGet, "/compress/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCompressHandlerGetStatusInvalidID(t *testing.T) {
	userID := uuid.New()
	repo := newStubRepo()
	engine := compress.NewEngine()
	defer engine.Shutdown()
	svc := compressjob.NewService(engine, stubR2{}, repo)
	defer svc.Stop()

	h := NewCompressHandler(nil, svc)
	router := setupRouter(h, userID)

	req := httptest.NewRequest(http.MethodGet, "/compress/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
