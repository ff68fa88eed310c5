package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imagecompressor/internal/compress"
	"imagecompressor/internal/compressjob"
	"imagecompressor/internal/storage"
	"imagecompressor/internal/utils"
)

// CompressHandler exposes the submit/status/resubmit endpoints for the
// compression job service, mirroring the teacher's UploadHandler shape
// (presign -> finalize -> status) but for a single compress() call instead
// of a derivative fan-out.
type CompressHandler struct {
	r2      *storage.R2Client
	service *compressjob.Service
}

// NewCompressHandler creates a new compress handler.
func NewCompressHandler(r2 *storage.R2Client, service *compressjob.Service) *CompressHandler {
	return &CompressHandler{r2: r2, service: service}
}

// PresignRequest represents the request for a presigned upload URL.
type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignResponse contains the presigned URL and upload key.
type PresignResponse struct {
	UploadURL       string `json:"upload_url"`
	UploadExpiresAt string `json:"upload_expires_at"`
	Key             string `json:"key"`
}

// SubmitRequest triggers async compression of an uploaded image.
type SubmitRequest struct {
	UploadKey string           `json:"upload_key" binding:"required"`
	Options   compress.Options `json:"options"`
}

// SubmitResponse acknowledges a queued compression job.
type SubmitResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

// JobStatusResponse reports a compression job's current state.
type JobStatusResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	OriginalSize int    `json:"original_size,omitempty"`
	ResultFormat string `json:"result_format,omitempty"`
	ResultWidth  int    `json:"result_width,omitempty"`
	ResultHeight int    `json:"result_height,omitempty"`
	ResultSize   int    `json:"result_size,omitempty"`
	ResultURL    string `json:"result_url,omitempty"`
	Warning      string `json:"warning,omitempty"`
	Error        string `json:"error,omitempty"`
}

// GetPresignedURL issues a presigned URL for direct upload to R2.
func (h *CompressHandler) GetPresignedURL(c *gin.Context) {
	ctx := c.Request.Context()

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	key := fmt.Sprintf("uploads/tmp/%s/%s_%s", userID.String(), uuid.New().String()[:8], req.Filename)

	uploadURL, err := h.r2.GeneratePresignedURL(ctx, key, req.ContentType)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}

	utils.SendSuccess(c, "presigned URL generated", PresignResponse{
		UploadURL: uploadURL,
		Key:       key,
	})
}

// Submit queues a compression job for an uploaded image.
func (h *CompressHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	expectedPrefix := fmt.Sprintf("uploads/tmp/%s/", userID.String())
	if len(req.UploadKey) < len(expectedPrefix) || req.UploadKey[:len(expectedPrefix)] != expectedPrefix {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for this upload"})
		return
	}

	jobID, err := h.service.Submit(userID, req.UploadKey, req.Options)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to create compression job, try again later"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": SubmitResponse{
			JobID:     jobID.String(),
			Status:    "processing",
			StatusURL: fmt.Sprintf("/api/v1/compress/%s", jobID.String()),
		},
	})
}

// Resubmit requeues an existing upload with new options (a new generation).
func (h *CompressHandler) Resubmit(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	var req struct {
		Options compress.Options `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	jobID, err := h.service.Resubmit(id, req.Options)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "job not found", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": SubmitResponse{
			JobID:     jobID.String(),
			Status:    "processing",
			StatusURL: fmt.Sprintf("/api/v1/compress/%s", jobID.String()),
		},
	})
}

// GetStatus returns the current status and, once ready, the result location
// of a compression job.
func (h *CompressHandler) GetStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	job, ok := h.service.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	resp := JobStatusResponse{
		JobID:        job.ID.String(),
		Status:       string(job.Status),
		OriginalSize: job.OriginalSize,
		Warning:      job.Warning,
		Error:        job.LastError,
	}
	if job.Status == compressjob.StatusReady {
		resp.ResultFormat = job.ResultFormat
		resp.ResultWidth = job.ResultWidth
		resp.ResultHeight = job.ResultHeight
		resp.ResultSize = job.ResultSize
		resp.ResultURL = h.service.ResultURL(job)
	}

	utils.SendSuccess(c, "job status", resp)
}

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}
