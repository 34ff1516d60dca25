package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/cliplens-backend/internal/http/middlewarectx"
	"github.com/cliplens/cliplens-backend/internal/models"
)

const testSecret = "super-secret"

type RoleProviderMock struct {
	mock.Mock
}

func (m *RoleProviderMock) GetRole(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	logger := newNoopLogger()

	validToken := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "uid-123",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	expiredToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKeyToken := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "uid-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubToken := signToken(t, testSecret, jwt.MapClaims{
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	handlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		assert.Equal(t, "uid-123", r.Context().Value(middlewarectx.UserUID))
		assert.Equal(t, "user@example.com", r.Context().Value(middlewarectx.Email))
		w.WriteHeader(http.StatusOK)
	})

	middleware := middlewarectx.AuthMiddleware(testSecret, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + expiredToken,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "token signed with wrong key",
			authHeader:     "Bearer " + wrongKeyToken,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "token without subject",
			authHeader:     "Bearer " + noSubToken,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		userUID        string
		mockRole       string
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing user in context",
			userUID:        "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "role lookup error",
			userUID:        "uid-1",
			mockErr:        errors.New("storage down"),
			wantStatusCode: http.StatusInternalServerError,
			wantCalled:     false,
		},
		{
			name:           "non-admin role",
			userUID:        "uid-1",
			mockRole:       models.RoleUser,
			wantStatusCode: http.StatusForbidden,
			wantCalled:     false,
		},
		{
			name:           "admin role",
			userUID:        "uid-1",
			mockRole:       models.RoleAdmin,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rolesMock := new(RoleProviderMock)
			if tt.mockRole != "" || tt.mockErr != nil {
				rolesMock.On("GetRole", mock.Anything, tt.userUID).
					Return(tt.mockRole, tt.mockErr).Once()
			}

			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			middleware := middlewarectx.AdminMiddleware(rolesMock, logger)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			middleware.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			rolesMock.AssertExpectations(t)
		})
	}
}
