package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/auth"
	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/exporter"
	"reqcheck/internal/middleware"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/services"
	"reqcheck/internal/shared/testutil"
	"reqcheck/internal/table"
)

const testCookie = "reqcheck_session"

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, req services.GenerateRequest) (*reconcile.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.Result), args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, joined *table.Table, format exporter.Format) (*exporter.Artifact, error) {
	args := m.Called(ctx, joined, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exporter.Artifact), args.Error(1)
}

// MockPasswordChecker is a mock implementation of PasswordChecker
type MockPasswordChecker struct {
	mock.Mock
}

func (m *MockPasswordChecker) Check(client, password string) error {
	return m.Called(client, password).Error(0)
}

// MockLoginRecorder is a mock implementation of LoginRecorder
type MockLoginRecorder struct {
	mock.Mock
}

func (m *MockLoginRecorder) RecordLogin(ctx context.Context, result string) {
	m.Called(result)
}

func newErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testutil.DiscardLogger(), false)
}

func newValidator() *middleware.ValidationMiddleware {
	return middleware.NewValidationMiddleware(testutil.DiscardLogger(), newErrorHandler())
}

func newStore() *auth.Store {
	return auth.NewStore(time.Hour, auth.Preferences{ExportFormat: "xlsx"}, testutil.DiscardLogger())
}

// withSession attaches sess to r the way the session guard does.
func withSession(r *http.Request, sess auth.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), sess))
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, uploads ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := mw.CreateFormFile(u.field, u.name)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
