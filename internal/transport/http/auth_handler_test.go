package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/auth"
	"reqcheck/internal/shared/testutil"
)

func newAuthHandler(gate PasswordChecker, store SessionManager, recorder LoginRecorder) *AuthHandler {
	return NewAuthHandler(gate, store, CookieConfig{Name: testCookie, Secure: true}, recorder,
		newValidator(), newErrorHandler(), testutil.DiscardLogger())
}

func TestAuthHandler_Login(t *testing.T) {
	gate := new(MockPasswordChecker)
	gate.On("Check", "192.0.2.1", "segredo").Return(nil)
	recorder := new(MockLoginRecorder)
	recorder.On("RecordLogin", loginSuccess).Once()
	store := newStore()

	h := newAuthHandler(gate, store, recorder)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"segredo"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookie := findCookie(rec, testCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)

	body := decodeBody(t, rec)
	assert.Equal(t, cookie.Value, body["id"])
	assert.Equal(t, "xlsx", body["export_format"])
	assert.Equal(t, false, body["has_report"])

	_, err := store.Get(cookie.Value)
	assert.NoError(t, err)
	gate.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		gateErr        error
		result         string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "wrong password",
			body:           `{"password":"errado"}`,
			gateErr:        auth.ErrInvalidPassword,
			result:         loginInvalid,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
		},
		{
			name:           "throttled",
			body:           `{"password":"errado"}`,
			gateErr:        auth.ErrThrottled,
			result:         loginThrottled,
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name:           "gate disabled",
			body:           `{"password":"segredo"}`,
			gateErr:        auth.ErrGateDisabled,
			result:         loginDisabled,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:           "missing password",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "unknown field",
			body:           `{"password":"x","user":"admin"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := new(MockPasswordChecker)
			recorder := new(MockLoginRecorder)
			if tt.gateErr != nil {
				gate.On("Check", mock.Anything, mock.Anything).Return(tt.gateErr)
				recorder.On("RecordLogin", tt.result).Once()
			}
			store := newStore()

			h := newAuthHandler(gate, store, recorder)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, decodeBody(t, rec)["error_code"])
			assert.Nil(t, findCookie(rec, testCookie))
			assert.Equal(t, 0, store.Len())
			if tt.gateErr == nil {
				gate.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
			}
			recorder.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LoginThrottledSetsRetryAfter(t *testing.T) {
	gate := new(MockPasswordChecker)
	gate.On("Check", mock.Anything, mock.Anything).Return(auth.ErrThrottled)

	h := newAuthHandler(gate, newStore(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"x"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, float64(60), decodeBody(t, rec)["retry_after"])
}

func TestAuthHandler_Logout(t *testing.T) {
	store := newStore()
	sess := store.Create()

	h := newAuthHandler(new(MockPasswordChecker), store, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: sess.ID})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookie := findCookie(rec, testCookie)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
	assert.Empty(t, cookie.Value)

	_, err := store.Get(sess.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	// Without a cookie logout still clears it.
	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
