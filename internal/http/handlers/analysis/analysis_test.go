package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cliplens/cliplens-backend/internal/aiclient"
	analysissvc "github.com/cliplens/cliplens-backend/internal/services/analysis"
)

// MockService реализует интерфейс analysis.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Analyze(ctx context.Context, systemInstruction string, parts []aiclient.Part) (json.RawMessage, error) {
	args := m.Called(ctx, systemInstruction, parts)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func TestAnalysisHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"system_instruction":"rate this clip","parts":[{"text":"frame description"}]}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный анализ",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "rate this clip",
					[]aiclient.Part{{Text: "frame description"}}).
					Return(json.RawMessage(`{"score":8}`), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"score":8`,
		},
		{
			name:           "пустой список частей",
			body:           `{"system_instruction":"x","parts":[]}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"parts are required"`,
		},
		{
			name: "403 апстрима пробрасывается",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &aiclient.APIError{StatusCode: http.StatusForbidden, Message: "API key lacks access"})
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"API key lacks access"`,
		},
		{
			name: "прочие ошибки апстрима дают 500",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &aiclient.APIError{StatusCode: http.StatusServiceUnavailable, Message: "model overloaded"})
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"model overloaded"`,
		},
		{
			name: "не-JSON ответ модели",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, analysissvc.ErrNotJSON)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"model response is not valid json"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/analysis", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
