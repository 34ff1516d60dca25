package contact

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	contactsvc "github.com/cliplens/cliplens-backend/internal/services/contact"
)

// MockService реализует интерфейс contact.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Submit(ctx context.Context, ip string, req contactsvc.Request) error {
	args := m.Called(ctx, ip, req)
	return args.Error(0)
}

func TestContactHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"name":"Alice","email":"alice@example.com","message":"I would like to know more about the business plan."}`

	tests := []struct {
		name           string
		body           string
		forwardedFor   string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "успешная отправка",
			body:         validBody,
			forwardedFor: "203.0.113.7, 10.0.0.1",
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "203.0.113.7", mock.MatchedBy(func(r contactsvc.Request) bool {
					return r.Email == "alice@example.com" && r.Honeypot == ""
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "honeypot получает обычный успех",
			body: `{"name":"Bot","email":"bot@example.com","message":"buy cheap followers today, best prices","website":"http://spam.example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, mock.Anything, mock.MatchedBy(func(r contactsvc.Request) bool {
					return r.Honeypot != ""
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "слишком короткое сообщение",
			body:           `{"name":"Alice","email":"alice@example.com","message":"hi"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Message is too short`,
		},
		{
			name:           "некорректный email",
			body:           `{"name":"Alice","email":"not-an-email","message":"I would like to know more about the business plan."}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name: "honeypot с невалидными полями получает обычный успех",
			body: `{"name":"Bot","email":"not-an-email","message":"hi","website":"http://spam.example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, mock.Anything, mock.MatchedBy(func(r contactsvc.Request) bool {
					return r.Honeypot != ""
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "превышен лимит",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, mock.Anything, mock.Anything).
					Return(contactsvc.ErrRateLimited)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `"too many requests, try again later"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(tt.body))
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
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
