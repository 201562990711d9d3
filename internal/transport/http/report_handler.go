package http

import (
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"reqcheck/internal/auth"
	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/exporter"
	"reqcheck/internal/middleware"
	"reqcheck/internal/services"
	"reqcheck/internal/validation"
	api "reqcheck/pkg/contracts/api/v1"
)

// Multipart field names of the two uploads.
const (
	FieldHistory = "history"
	FieldCurrent = "current"
)

// multipartOverhead is the allowance for multipart boundaries and headers on
// top of the two files.
const multipartOverhead = 64 << 10

// RequestLimit is the body size allowed for an upload request when each file
// may take maxUpload bytes.
func RequestLimit(maxUpload int64) int64 {
	return 2*maxUpload + multipartOverhead
}

// exportFormats are the accepted values of the format query parameter.
var exportFormats = []string{"xlsx", "csv", "excel"}

// ReportHandler handles report generation and export downloads.
type ReportHandler struct {
	reports      ReportService
	sessions     SessionManager
	files        *validation.FileValidator
	maxUpload    int64
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a report handler. maxUpload caps each uploaded file.
func NewReportHandler(reports ReportService, sessions SessionManager, maxUpload int64, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	logger = logger.With(slog.String("handler", "report"))
	return &ReportHandler{
		reports:      reports,
		sessions:     sessions,
		files:        validation.NewFileValidator(maxUpload, logger),
		maxUpload:    maxUpload,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator("multipart/form-data"), middleware.MaxBodySize(RequestLimit(h.maxUpload))).
		Post("/", h.Create)
	r.Get("/latest/export", h.Export)
	return r
}

// Create handles POST /api/reports. The body is multipart/form-data with the
// historical spreadsheet in "history" and the current one in "current".
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.errorHandler.HandleError(w, r, multipartError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	history, err := h.openUpload(r, FieldHistory)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer history.Close()

	current, err := h.openUpload(r, FieldCurrent)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer current.Close()

	result, err := h.reports.Generate(ctx, services.GenerateRequest{
		History: history,
		Current: current,
		Debug:   sess.Preferences.ShowDebug,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.sessions.SetReport(sess.ID, &auth.StoredReport{
		Report: result.Report,
		Joined: result.Joined,
	}); err != nil {
		h.errorHandler.HandleError(w, r, sessionError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.ReportResponse{
		Report: result.Report,
		Rows:   result.Joined.Rows,
	})
}

// openUpload checks and opens one multipart file field.
func (h *ReportHandler) openUpload(r *http.Request, field string) (multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, apierrors.MissingUpload(field)
	}
	if err != nil {
		return nil, apierrors.UnreadableUpload(field, err)
	}

	if err := h.files.ValidateSpreadsheetName(header.Filename); err != nil {
		file.Close()
		return nil, apierrors.ErrUnsupportedFile.With("", uploadDetail(field, err))
	}
	if err := h.files.ValidateSize(header.Filename, header.Size); err != nil {
		file.Close()
		if h.maxUpload > 0 && header.Size > h.maxUpload {
			return nil, apierrors.ErrPayloadTooLarge.With("", uploadDetail(field, err))
		}
		return nil, apierrors.ErrValidation(field, uploadDetail(field, err).Message)
	}

	h.logger.DebugContext(r.Context(), "Upload accepted",
		slog.String("field", field),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size))
	return file, nil
}

func uploadDetail(field string, err error) apierrors.ValidationError {
	msg := err.Error()
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return apierrors.ValidationError{Field: field, Message: msg}
}

func multipartError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return apierrors.ErrPayloadTooLarge
	}
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return apierrors.ErrUnsupportedFile.With("Uploads must be sent as multipart/form-data", err.Error())
	}
	return apierrors.InvalidRequestWithError(err)
}

// Export handles GET /api/reports/latest/export?format=xlsx|csv. Without a
// format the session preference is used.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	value, ok := h.query.ValidateEnum(w, r, "format", exportFormats, sess.Preferences.ExportFormat)
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(value)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("format", err.Error()))
		return
	}

	if sess.Report == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
		return
	}

	artifact, err := h.reports.Export(ctx, sess.Report.Joined, format)
	if err != nil {
		if errors.Is(err, services.ErrNoReport) {
			h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrExportFailed.With("", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Report exported",
		slog.String("report_id", sess.Report.Report.ID),
		slog.String("format", string(format)),
		slog.String("file_name", artifact.FileName),
		slog.Bool("cached", artifact.Cached))

	writeArtifact(w, artifact)
}

func writeArtifact(w http.ResponseWriter, artifact *exporter.Artifact) {
	cache := "miss"
	if artifact.Cached {
		cache = "hit"
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("X-Export-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
