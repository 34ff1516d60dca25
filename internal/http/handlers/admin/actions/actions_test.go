package actions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cliplens/cliplens-backend/internal/services/admin"
)

// MockService реализует интерфейс actions.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, req admin.Request) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func TestActionsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное массовое удаление купонов",
			body: `{"action":"delete_coupons_bulk","ids":[1,2,3]}`,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, admin.Request{
					Action: admin.ActionDeleteCouponsBulk, IDs: []int{1, 2, 3},
				}).Return(int64(3), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"affected":3`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"action":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
		{
			name: "неизвестное действие",
			body: `{"action":"drop_database"}`,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, mock.Anything).
					Return(int64(0), admin.ErrUnknownAction)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"unknown action"`,
		},
		{
			name: "пустой список идентификаторов",
			body: `{"action":"delete_announcements_bulk","ids":[]}`,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, mock.Anything).
					Return(int64(0), admin.ErrEmptyIDs)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"ids list is empty"`,
		},
		{
			name: "ошибка сервиса",
			body: `{"action":"purge_trials"}`,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, mock.Anything).
					Return(int64(0), errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not execute action"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/admin/actions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
