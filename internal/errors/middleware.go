package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"reqcheck/internal/infrastructure"
)

// maxLoggedBody caps the JSON bodies kept for the failure log. Uploads are
// never buffered here.
const maxLoggedBody = 16 << 10

var redactedFields = []string{"password", "password_hash", "token", "secret", "session"}

// FailureLog logs API requests that end in a 4xx or 5xx status together with
// what the client sent: the redacted JSON body, or the name and size of every
// uploaded spreadsheet. Panics are turned into problem details.
type FailureLog struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewFailureLog creates the failure log middleware.
func NewFailureLog(handler *ErrorHandler, logger *slog.Logger) *FailureLog {
	return &FailureLog{
		handler: handler,
		logger:  infrastructure.WithComponent(logger, "failure_log"),
	}
}

// Handler returns the middleware handler function
func (f *FailureLog) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var body []byte
		if isJSON(r) && r.ContentLength > 0 && r.ContentLength < maxLoggedBody {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		start := time.Now()
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				f.handler.HandlePanic(ww, r, rvr)
			}
			f.logFailure(r, ww.Status(), body, time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}

func (f *FailureLog) logFailure(r *http.Request, status int, body []byte, duration time.Duration) {
	if status < http.StatusBadRequest {
		return
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("request_body", redactBody(body)))
	}
	if uploads := describeUploads(r.MultipartForm); len(uploads) > 0 {
		attrs = append(attrs, slog.Any("uploads", uploads))
	}

	f.logger.LogAttrs(r.Context(), level, "request failed", attrs...)
}

// uploadInfo describes one uploaded file in the failure log.
type uploadInfo struct {
	Field    string `json:"field"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// describeUploads lists the files of a form the handler already parsed.
func describeUploads(form *multipart.Form) []uploadInfo {
	if form == nil {
		return nil
	}
	var out []uploadInfo
	for field, headers := range form.File {
		for _, h := range headers {
			out = append(out, uploadInfo{Field: field, Filename: h.Filename, Size: h.Size})
		}
	}
	return out
}

// redactBody masks credential fields of a JSON body.
func redactBody(body []byte) string {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[unparseable body]"
	}
	for _, field := range redactedFields {
		if _, ok := data[field]; ok {
			data[field] = "[REDACTED]"
		}
	}
	out, _ := json.Marshal(data)
	if len(out) > 500 {
		return string(out[:500]) + "..."
	}
	return string(out)
}

func isJSON(r *http.Request) bool {
	return r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
