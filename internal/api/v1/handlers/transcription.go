package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"app-transcript/internal/api/errors"
	"app-transcript/internal/api/middleware"
	"app-transcript/internal/api/v1/dto"
	"app-transcript/internal/app/cache"
	"app-transcript/internal/app/export"
	"app-transcript/internal/app/model"
	"app-transcript/internal/app/transcript"
)

// IndexTemplate is the page rendered by the HTML handlers
const IndexTemplate = "index.html"

// uploads above this size are spooled to disk by mime/multipart
const multipartMemory = 32 << 20

// FlowRunner runs the transcription flow of one upload
type FlowRunner interface {
	Transcribe(ctx context.Context, c cache.Cache, upload *model.UploadedFile, opts transcript.Options) (*transcript.Result, error)
}

// TranscriptionHandler serves the upload page and the transcription API
type TranscriptionHandler struct {
	flows       FlowRunner
	sessions    cache.Store
	maxUploadMB int64
	logger      *zap.Logger
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(flows FlowRunner, sessions cache.Store, maxUploadMB int64, logger *zap.Logger) *TranscriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionHandler{
		flows:       flows,
		sessions:    sessions,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// Index handles GET /
func (h *TranscriptionHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, IndexTemplate, dto.NewPageView(c.Query("tab")))
}

// Page handles POST /transcribe/:kind and renders the outcome into the page.
// Errors never leave the page; they are shown in the active tab.
func (h *TranscriptionHandler) Page(c *gin.Context) {
	view := dto.NewPageView(c.Param("kind"))
	view.Prompt = c.PostForm("prompt")

	result, err := h.transcribe(c)
	if err != nil {
		apiErr := errors.FromAppError(err)
		_ = c.Error(err)
		view.Error = apiErr.Message
		c.HTML(apiErr.HTTPStatus(), IndexTemplate, view)
		return
	}

	view.Result = dto.NewTranscriptionResponse(result)
	c.HTML(http.StatusOK, IndexTemplate, view)
}

// Create handles POST /api/v1/transcriptions/:kind
func (h *TranscriptionHandler) Create(c *gin.Context) {
	result, err := h.transcribe(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if result == nil {
		middleware.HandleError(c, errors.NewValidationError("Validation failed", map[string]string{"file": "is required"}))
		return
	}

	c.JSON(http.StatusOK, dto.NewTranscriptionResponse(result))
}

// Entries handles GET /api/v1/session/entries
func (h *TranscriptionHandler) Entries(c *gin.Context) {
	session := middleware.SessionID(c)
	entries, err := h.sessions.Session(session).Entries(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to read session cache"))
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionEntriesResponse(session, entries))
}

// Export handles GET /api/v1/session/export
func (h *TranscriptionHandler) Export(c *gin.Context) {
	entries, err := h.sessions.Session(middleware.SessionID(c)).Entries(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to read session cache"))
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.Filename(time.Now())))
	if err := export.ToExcel(entries, c.Writer); err != nil {
		// headers are already out, the status can no longer change
		h.logger.Error("session export failed", zap.Error(err))
	}
}

// transcribe binds the request and runs the flow. A request without a file
// yields (nil, nil).
func (h *TranscriptionHandler) transcribe(c *gin.Context) (*transcript.Result, error) {
	var uri dto.TranscriptionURI
	if err := middleware.ValidateURI(c, &uri); err != nil {
		return nil, err
	}
	kind, err := model.ParseMediaKind(uri.Kind)
	if err != nil {
		return nil, errors.NewNotFoundError("media kind")
	}

	if c.Request.ContentLength > h.maxUploadMB*1024*1024 {
		return nil, errors.NewTooLargeError(h.maxUploadMB)
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, errors.NewTooLargeError(h.maxUploadMB)
		}
		return nil, errors.NewBadRequestError("invalid multipart upload")
	}

	var form dto.TranscriptionForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		return nil, err
	}

	fh, err := c.FormFile("file")
	if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewBadRequestError("invalid multipart upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.NewBadRequestError("uploaded file is unreadable")
	}
	defer f.Close()

	upload := &model.UploadedFile{
		Kind:     kind,
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	}
	session := h.sessions.Session(middleware.SessionID(c))
	return h.flows.Transcribe(c.Request.Context(), session, upload, form.Options())
}
