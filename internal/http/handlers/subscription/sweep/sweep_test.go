package sweep

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockService реализует интерфейс sweep.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestSweepHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		secret         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "успешный обход",
			secret: "cron-secret",
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, mock.Anything).Return(4, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"demoted":4`,
		},
		{
			name:           "отсутствует секрет",
			secret:         "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:           "неверный секрет",
			secret:         "guess",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:   "ошибка сервиса",
			secret: "cron-secret",
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, mock.Anything).Return(0, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"sweep failed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, "cron-secret")

			req := httptest.NewRequest(http.MethodPost, "/internal/subscriptions/sweep", nil)
			if tt.secret != "" {
				req.Header.Set(SecretHeader, tt.secret)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
