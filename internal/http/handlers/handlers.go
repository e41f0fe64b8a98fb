package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floorquote/backend/internal/archive"
	"github.com/floorquote/backend/internal/db"
	"github.com/floorquote/backend/internal/models"
	"github.com/floorquote/backend/internal/pricing"
	"github.com/floorquote/backend/internal/report"
	"github.com/floorquote/backend/internal/service"
	"github.com/floorquote/backend/internal/session"
	"github.com/floorquote/backend/internal/storage"
)

const (
	sourceExport = "export"
	sourcePhoto  = "photo"

	presignExpiry = 15 * time.Minute
)

// AnalysisStore persists analyses. *db.Store implements it.
type AnalysisStore interface {
	Ping(ctx context.Context) error
	CreateAnalysis(ctx context.Context, id, sessionID, source, archiveKey string) error
	SaveAnalysis(ctx context.Context, a models.Analysis) error
	FailAnalysis(ctx context.Context, id string, reason string) error
	UpdateCost(ctx context.Context, id string, cost models.CostEstimate) error
	LatestAnalysis(ctx context.Context) (models.Analysis, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the quote API. Store and Archive are optional and may be nil.
type Handler struct {
	Pipeline       *service.Pipeline
	Sessions       session.Store
	Store          AnalysisStore
	Archive        storage.ObjectStore
	Contact        models.Contact
	Validator      *validator.Validate
	Logger         zerolog.Logger
	MaxUploadBytes int64
	Now            func() time.Time
}

type AnalysisResponse struct {
	AnalysisID string                 `json:"analysis_id"`
	Summary    string                 `json:"summary"`
	Assessment models.FloorAssessment `json:"assessment"`
	Cost       models.CostEstimate    `json:"cost"`
	Timeline   models.Timeline        `json:"timeline"`
	Client     models.ClientInfo      `json:"client"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	components := gin.H{}
	if h.Store != nil {
		if err := h.Store.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
		components["db"] = "ok"
	}
	if p, ok := h.Sessions.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "SESSIONS_UNAVAILABLE", "Session cache unavailable", err.Error())
			return
		}
		components["sessions"] = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "components": components})
}

// @Summary Analyze a chat export
// @Description Upload a zipped WhatsApp chat export; every photo in it is analyzed and priced
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "chat export .zip"
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} map[string]any
// @Failure 413 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /api/sessions/{id}/export [post]
func (h *Handler) UploadExport(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	file, ok := h.formFile(c)
	if !ok {
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".zip") {
		writeError(c, http.StatusBadRequest, "UNSUPPORTED_FILE", "Please upload the chat export as a .zip archive", file.Filename)
		return
	}
	data, err := readUpload(file)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", err.Error())
		return
	}

	ctx := c.Request.Context()
	id := uuid.NewString()
	archiveKey := h.archiveExport(ctx, sessionID, id, data)
	h.recordStart(ctx, id, sessionID, sourceExport, archiveKey)

	res, err := h.Pipeline.ProcessExport(ctx, data)
	if err != nil {
		h.recordFailure(ctx, id, err)
		var extErr *archive.ExtractionError
		switch {
		case errors.Is(err, archive.ErrTooLarge):
			h.dropArchived(ctx, archiveKey)
			writeError(c, http.StatusRequestEntityTooLarge, "ARCHIVE_TOO_LARGE", "Archive exceeds the extraction limit", err.Error())
		case errors.As(err, &extErr):
			h.dropArchived(ctx, archiveKey)
			writeError(c, http.StatusBadRequest, "INVALID_ARCHIVE", "The file is not a readable zip archive", err.Error())
		case errors.Is(err, service.ErrNoImagesFound):
			writeError(c, http.StatusUnprocessableEntity, "NO_IMAGES", "No photos found in the export", gin.H{
				"client":   res.Client,
				"messages": len(res.Messages),
			})
		default:
			h.Logger.Error().Err(err).Str("session", sessionID).Msg("export processing failed")
			writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Processing failed", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, h.complete(ctx, models.Analysis{
		ID:         id,
		SessionID:  sessionID,
		Source:     sourceExport,
		Assessment: res.Assessment,
		Client:     res.Client,
		ArchiveKey: archiveKey,
	}))
}

type PhotoForm struct {
	Caption string `form:"caption" validate:"max=4096"`
}

// @Summary Analyze a single photo
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "photo"
// @Param caption formData string false "caption used as context"
// @Success 200 {object} AnalysisResponse
// @Failure 422 {object} map[string]any
// @Router /api/sessions/{id}/photo [post]
func (h *Handler) UploadPhoto(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var form PhotoForm
	if err := c.ShouldBind(&form); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form", err.Error())
		return
	}
	if err := h.Validator.Struct(form); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	file, ok := h.formFile(c)
	if !ok {
		return
	}
	if _, ok := archive.ImageExtensions[strings.ToLower(filepath.Ext(file.Filename))]; !ok {
		writeError(c, http.StatusBadRequest, "UNSUPPORTED_FILE", "Supported photo formats: jpg, jpeg, png, webp", file.Filename)
		return
	}
	data, err := readUpload(file)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", err.Error())
		return
	}

	ctx := c.Request.Context()
	id := uuid.NewString()
	h.recordStart(ctx, id, sessionID, sourcePhoto, "")

	assessment, err := h.Pipeline.ProcessPhoto(ctx, data, filepath.Base(file.Filename), strings.TrimSpace(form.Caption))
	if err != nil {
		h.recordFailure(ctx, id, err)
		var photoErr *service.PhotoError
		if errors.As(err, &photoErr) {
			writeError(c, http.StatusUnprocessableEntity, "ANALYSIS_FAILED", "Photo analysis failed", assessment)
			return
		}
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Processing failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, h.complete(ctx, models.Analysis{
		ID:         id,
		SessionID:  sessionID,
		Source:     sourcePhoto,
		Assessment: assessment,
		Client:     models.ClientInfo{ProblemDescriptions: []string{}},
	}))
}

// @Summary Render a report for the last analysis
// @Tags reports
// @Produce json
// @Param id path string true "Session ID"
// @Param kind query string false "full, client or summary"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/sessions/{id}/report [get]
func (h *Handler) Report(c *gin.Context) {
	a, ok := h.sessionAnalysis(c)
	if !ok {
		return
	}
	d := report.Data{
		Assessment: a.Assessment,
		Cost:       a.Cost,
		Timeline:   a.Timeline,
		Client:     a.Client,
		Contact:    h.Contact,
		At:         a.CreatedAt,
	}
	kind := c.DefaultQuery("kind", "full")
	var text string
	switch kind {
	case "full":
		text = report.Full(d)
	case "client":
		text = report.ClientReply(d)
	case "summary":
		text = report.QuickSummary(a.Assessment, a.Cost)
	default:
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "kind must be full, client or summary", kind)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis_id": a.ID, "kind": kind, "text": text})
}

type PriceRequest struct {
	RecommendedCost int `json:"recommended_cost" validate:"gt=0"`
}

// @Summary Set the recommended price
// @Tags pricing
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body PriceRequest true "new price"
// @Success 200 {object} map[string]any
// @Router /api/sessions/{id}/price [post]
func (h *Handler) AdjustPrice(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	a, ok := h.sessionAnalysis(c)
	if !ok {
		return
	}
	cost, err := pricing.Adjust(a.Cost, req.RecommendedCost)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid price", err.Error())
		return
	}
	a.Cost = cost

	ctx := c.Request.Context()
	if err := h.Sessions.Put(ctx, a.SessionID, a); err != nil {
		writeError(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to store price", err.Error())
		return
	}
	if h.Store != nil {
		if err := h.Store.UpdateCost(ctx, a.ID, cost); err != nil {
			h.Logger.Warn().Err(err).Str("analysis", a.ID).Msg("persist adjusted price")
		}
	}
	c.JSON(http.StatusOK, gin.H{"analysis_id": a.ID, "cost": cost, "summary": report.QuickSummary(a.Assessment, cost)})
}

// @Summary Start a new analysis
// @Description Drops the stored analysis for the session
// @Tags analysis
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]any
// @Router /api/sessions/{id} [delete]
func (h *Handler) ResetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.Sessions.Delete(c.Request.Context(), sessionID); err != nil {
		writeError(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to reset session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Download the archived export
// @Tags analysis
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]any
// @Router /api/sessions/{id}/archive [get]
func (h *Handler) ArchiveLink(c *gin.Context) {
	a, ok := h.sessionAnalysis(c)
	if !ok {
		return
	}
	if h.Archive == nil || a.ArchiveKey == "" {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No archived export for this analysis", nil)
		return
	}
	u, err := h.Archive.PresignGet(c.Request.Context(), a.ArchiveKey, presignExpiry)
	if err != nil {
		writeError(c, http.StatusBadGateway, "STORAGE_ERROR", "Failed to sign archive link", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u, "expires_in": int(presignExpiry.Seconds())})
}

func (h *Handler) Contacts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contact": h.Contact, "text": report.Contacts(h.Contact)})
}

// @Summary Latest completed analysis
// @Tags analysis
// @Produce json
// @Success 200 {object} models.Analysis
// @Router /api/analyses/latest [get]
func (h *Handler) LatestAnalysis(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "DB_DISABLED", "Persistence is not configured", nil)
		return
	}
	a, err := h.Store.LatestAnalysis(c.Request.Context())
	if errors.Is(err, db.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No analyses yet", nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load analysis", err.Error())
		return
	}
	c.JSON(http.StatusOK, a)
}

// complete prices an assessment, stores it in the session slot and persists it.
func (h *Handler) complete(ctx context.Context, a models.Analysis) AnalysisResponse {
	a.Cost = pricing.Calculate(a.Assessment)
	a.Timeline = pricing.Timeline(a.Assessment)
	a.CreatedAt = h.now()

	if err := h.Sessions.Put(ctx, a.SessionID, a); err != nil {
		h.Logger.Error().Err(err).Str("session", a.SessionID).Msg("store session analysis")
	}
	if h.Store != nil {
		if err := h.Store.SaveAnalysis(ctx, a); err != nil {
			h.Logger.Warn().Err(err).Str("analysis", a.ID).Msg("persist analysis")
		}
	}
	return AnalysisResponse{
		AnalysisID: a.ID,
		Summary:    report.QuickSummary(a.Assessment, a.Cost),
		Assessment: a.Assessment,
		Cost:       a.Cost,
		Timeline:   a.Timeline,
		Client:     a.Client,
	}
}

func (h *Handler) sessionAnalysis(c *gin.Context) (models.Analysis, bool) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return models.Analysis{}, false
	}
	a, err := h.Sessions.Get(c.Request.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NO_ANALYSIS", "No analysis for this session, upload an export or a photo first", nil)
		return models.Analysis{}, false
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to load session", err.Error())
		return models.Analysis{}, false
	}
	return a, true
}

// SessionParam is the chat session path parameter. It becomes part of object keys, so
// path segments like "." and ".." are refused.
type SessionParam struct {
	ID string `validate:"required,max=128,ne=.,ne=..,excludesall=/\\"`
}

func (h *Handler) sessionID(c *gin.Context) (string, bool) {
	p := SessionParam{ID: c.Param("id")}
	if err := h.Validator.Struct(p); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_SESSION", "Invalid session id", err.Error())
		return "", false
	}
	return p.ID, true
}

func (h *Handler) formFile(c *gin.Context) (*multipart.FileHeader, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return nil, false
	}
	if h.MaxUploadBytes > 0 && file.Size > h.MaxUploadBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit", gin.H{
			"size":  file.Size,
			"limit": h.MaxUploadBytes,
		})
		return nil, false
	}
	return file, true
}

func (h *Handler) archiveExport(ctx context.Context, sessionID, id string, data []byte) string {
	if h.Archive == nil {
		return ""
	}
	key, err := storage.PutExport(ctx, h.Archive, sessionID, id, data)
	if err != nil {
		h.Logger.Warn().Err(err).Str("session", sessionID).Msg("archive export")
		return ""
	}
	return key
}

func (h *Handler) dropArchived(ctx context.Context, key string) {
	if h.Archive == nil || key == "" {
		return
	}
	if err := h.Archive.Delete(ctx, key); err != nil {
		h.Logger.Warn().Err(err).Str("key", key).Msg("delete archived export")
	}
}

func (h *Handler) recordStart(ctx context.Context, id, sessionID, source, archiveKey string) {
	if h.Store == nil {
		return
	}
	if err := h.Store.CreateAnalysis(ctx, id, sessionID, source, archiveKey); err != nil {
		h.Logger.Warn().Err(err).Str("analysis", id).Msg("record analysis start")
	}
}

func (h *Handler) recordFailure(ctx context.Context, id string, cause error) {
	if h.Store == nil {
		return
	}
	if err := h.Store.FailAnalysis(ctx, id, cause.Error()); err != nil {
		h.Logger.Warn().Err(err).Str("analysis", id).Msg("record analysis failure")
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
