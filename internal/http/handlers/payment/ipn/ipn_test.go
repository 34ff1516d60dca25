package ipn

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

	"github.com/cliplens/cliplens-backend/internal/paymentgateway"
	"github.com/cliplens/cliplens-backend/internal/services/payment"
)

const testSecret = "gw-secret"

// MockService реализует интерфейс ipn.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) HandleNotification(ctx context.Context, n *paymentgateway.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func TestIPNHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"reference":"ord-1","status_code":0,"recurring_charge_id":"rc-7"}`

	tests := []struct {
		name           string
		body           string
		signature      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное уведомление",
			body:      validBody,
			signature: paymentgateway.SignBody(testSecret, []byte(validBody)),
			setupMock: func(m *MockService) {
				m.On("HandleNotification", mock.Anything, &paymentgateway.Notification{
					Reference: "ord-1", StatusCode: 0, RecurringChargeID: "rc-7",
				}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "отсутствует подпись",
			body:           validBody,
			signature:      "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid signature"`,
		},
		{
			name:           "подпись от другого тела",
			body:           validBody,
			signature:      paymentgateway.SignBody(testSecret, []byte(`{"reference":"ord-2"}`)),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid signature"`,
		},
		{
			name:           "нет ссылки заказа",
			body:           `{"status_code":0}`,
			signature:      paymentgateway.SignBody(testSecret, []byte(`{"status_code":0}`)),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"reference is required"`,
		},
		{
			name:      "заказ не найден",
			body:      validBody,
			signature: paymentgateway.SignBody(testSecret, []byte(validBody)),
			setupMock: func(m *MockService) {
				m.On("HandleNotification", mock.Anything, mock.Anything).
					Return(payment.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"order not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/payments/ipn", strings.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
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
