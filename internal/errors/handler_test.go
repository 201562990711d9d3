package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/reconcile"
	"reqcheck/internal/shared/testutil"
	"reqcheck/internal/table"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	schemaErr := &reconcile.SchemaError{Tables: []reconcile.MissingColumns{
		{Table: "consolidado", Columns: []string{"disciplina"}},
	}}
	unexpected := reconcile.Unexpected("join", fmt.Errorf("boom"))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "schema error",
			err:        fmt.Errorf("run: %w", schemaErr),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSchema,
			wantTitle:  "Missing Columns",
		},
		{
			name:       "unexpected error",
			err:        unexpected,
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeProcessing,
			wantTitle:  "Processing Failed",
		},
		{
			name:       "canceled run",
			err:        reconcile.Unexpected("sanitize", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "legacy workbook",
			err:        fmt.Errorf("history.xls: %w", table.ErrLegacyWorkbook),
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   TypeUnsupportedFile,
			wantTitle:  "Unsupported File",
		},
		{
			name:       "empty upload",
			err:        fmt.Errorf("current.csv: %w", table.ErrEmptyInput),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUnreadableFile,
			wantTitle:  "Unreadable File",
		},
		{
			name:       "api error",
			err:        ErrReportNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeReportNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "app validation error",
			err:        NewAppValidationError("file too large"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Validation Failed",
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/reports", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_NilError(t *testing.T) {
	handler := NewErrorHandler(testutil.DiscardLogger(), false)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_SchemaErrorListsColumns(t *testing.T) {
	handler := NewErrorHandler(testutil.DiscardLogger(), false)
	err := &reconcile.SchemaError{Tables: []reconcile.MissingColumns{
		{Table: "consolidado", Columns: []string{"disciplina", "parecer"}},
		{Table: "requerimentos", Columns: []string{"Nome completo"}},
	}}

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodPost, "/api/reports", nil), err)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeProblem(t, rec)
	assert.Contains(t, body["detail"], "consolidado: missing columns - disciplina, parecer")

	tables, ok := body["tables"].([]any)
	require.True(t, ok)
	require.Len(t, tables, 2)
	first := tables[0].(map[string]any)
	assert.Equal(t, "consolidado", first["table"])
	assert.Equal(t, []any{"disciplina", "parecer"}, first["missing"])
}

func TestErrorHandler_StackVisibility(t *testing.T) {
	err := reconcile.Unexpected("join", fmt.Errorf("boom"))

	tests := []struct {
		name         string
		includeStack bool
		debug        bool
		wantStack    bool
	}{
		{name: "hidden by default", wantStack: false},
		{name: "shown in development", includeStack: true, wantStack: true},
		{name: "shown for debug sessions", debug: true, wantStack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewErrorHandler(testutil.DiscardLogger(), tt.includeStack)
			req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
			req = req.WithContext(WithDebug(req.Context(), tt.debug))

			rec := httptest.NewRecorder()
			handler.HandleError(rec, req, err)

			body := decodeProblem(t, rec)
			assert.Equal(t, "join", body["stage"])
			assert.Equal(t, "join: boom", body["detail"])
			if tt.wantStack {
				assert.NotEmpty(t, body["stack"])
			} else {
				assert.NotContains(t, body, "stack")
			}
		})
	}
}

func TestErrorHandler_LogLevels(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)

	handler.HandleError(httptest.NewRecorder(), req, ErrUnauthorized)
	handler.HandleError(httptest.NewRecorder(), req, fmt.Errorf("disk full"))

	assert.Len(t, logs.GetRecordsByLevel(slog.LevelWarn), 1)
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 1)
	assert.True(t, logs.ContainsAttr("component", "error_handler"))
}

func TestErrorHandler_RateLimitRetryAfter(t *testing.T) {
	handler := NewErrorHandler(testutil.DiscardLogger(), false)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), ErrRateLimitExceeded)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeRateLimit, body["type"])
	assert.Equal(t, float64(60), body["retry_after"])
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error_code"])
}

func TestErrorHandler_SentinelProblemTypes(t *testing.T) {
	handler := NewErrorHandler(testutil.DiscardLogger(), false)

	tests := []struct {
		name     string
		err      *APIError
		status   int
		typ      string
		code     string
		detail   string
		hasField bool
	}{
		{
			name:     "invalid parameter",
			err:      InvalidParameter("format", "format must be one of: xlsx, csv"),
			status:   http.StatusBadRequest,
			typ:      TypeValidation,
			code:     "INVALID_PARAMETER",
			detail:   "format must be one of: xlsx, csv",
			hasField: true,
		},
		{
			name:     "missing upload",
			err:      MissingUpload("history"),
			status:   http.StatusBadRequest,
			typ:      TypeValidation,
			code:     "MISSING_PARAMETER",
			detail:   `file field "history" is required`,
			hasField: true,
		},
		{
			name:   "unreadable upload",
			err:    UnreadableUpload("current", fmt.Errorf("bad zip")),
			status: http.StatusUnprocessableEntity,
			typ:    TypeUnreadableFile,
			code:   "UNREADABLE_FILE",
			detail: "could not read current",
		},
		{
			name:   "service unavailable keeps its status",
			err:    ErrServiceUnavailable.With("Access password is not configured", "gate disabled"),
			status: http.StatusServiceUnavailable,
			typ:    TypeServiceDown,
			code:   "SERVICE_UNAVAILABLE",
			detail: "Access password is not configured",
		},
		{
			name:   "unknown code",
			err:    New(http.StatusTeapot, "TEAPOT", "short and stout"),
			status: http.StatusTeapot,
			typ:    TypeInternal,
			code:   "TEAPOT",
			detail: "short and stout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.typ, body["type"])
			assert.Equal(t, tt.code, body["error_code"])
			assert.Equal(t, tt.detail, body["detail"])
			if tt.hasField {
				details, ok := body["details"].(map[string]any)
				require.True(t, ok, body)
				assert.NotEmpty(t, details["field"])
			}
		})
	}
}

func TestAPIError_WithKeepsSentinel(t *testing.T) {
	err := ErrPayloadTooLarge.With("", "history: 30 MB")

	assert.Equal(t, ErrPayloadTooLarge.Message, err.Message)
	assert.Equal(t, ErrPayloadTooLarge.StatusCode, err.StatusCode)
	assert.Equal(t, "history: 30 MB", err.Details)
	assert.Nil(t, ErrPayloadTooLarge.Details, "sentinel is not mutated")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	handler.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "kaboom", body["panic"])
	assert.NotEmpty(t, body["stack"])
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(testutil.DiscardLogger(), false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad", "", "").
		WithExtension("field", "password")

	data, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/validation","title":"Bad","status":400,"field":"password"}`, string(data))
}

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := NewStorageError("failed to write export", cause).WithContext("dir", "/tmp/out")

	assert.Equal(t, "[STORAGE] failed to write export: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/tmp/out", err.Context["dir"])
	assert.Equal(t, "[NOT_FOUND] history.xlsx not found", NewNotFoundError("history.xlsx").Error())
}
