package admin_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/cliplens-backend/internal/services/admin"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) DeleteAnnouncement(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepositoryMock) DeleteAnnouncementsBulk(ctx context.Context, ids []int) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepositoryMock) DeleteCoupon(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepositoryMock) DeleteCouponsBulk(ctx context.Context, ids []int) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepositoryMock) PurgeTrials(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepositoryMock) DeleteUserAnnouncementsBulk(ctx context.Context, ids []int) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name         string
		req          admin.Request
		setupMock    func(m *RepositoryMock)
		wantAffected int64
		wantErr      error
	}{
		{
			name:    "unknown action",
			req:     admin.Request{Action: "drop_database"},
			wantErr: admin.ErrUnknownAction,
		},
		{
			name:    "bulk delete announcements with empty ids",
			req:     admin.Request{Action: admin.ActionDeleteAnnouncementsBulk},
			wantErr: admin.ErrEmptyIDs,
		},
		{
			name:    "bulk delete coupons with empty ids",
			req:     admin.Request{Action: admin.ActionDeleteCouponsBulk, IDs: []int{}},
			wantErr: admin.ErrEmptyIDs,
		},
		{
			name:    "bulk delete user announcements with empty ids",
			req:     admin.Request{Action: admin.ActionDeleteUserAnnouncementsBulk},
			wantErr: admin.ErrEmptyIDs,
		},
		{
			name:    "single delete without id",
			req:     admin.Request{Action: admin.ActionDeleteAnnouncement},
			wantErr: admin.ErrEmptyIDs,
		},
		{
			name: "delete announcement",
			req:  admin.Request{Action: admin.ActionDeleteAnnouncement, ID: 5},
			setupMock: func(m *RepositoryMock) {
				m.On("DeleteAnnouncement", mock.Anything, 5).Return(int64(1), nil).Once()
			},
			wantAffected: 1,
		},
		{
			name: "bulk delete coupons",
			req:  admin.Request{Action: admin.ActionDeleteCouponsBulk, IDs: []int{1, 2, 3}},
			setupMock: func(m *RepositoryMock) {
				m.On("DeleteCouponsBulk", mock.Anything, []int{1, 2, 3}).Return(int64(3), nil).Once()
			},
			wantAffected: 3,
		},
		{
			name: "purge trials needs no ids",
			req:  admin.Request{Action: admin.ActionPurgeTrials},
			setupMock: func(m *RepositoryMock) {
				m.On("PurgeTrials", mock.Anything).Return(int64(12), nil).Once()
			},
			wantAffected: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoMock := new(RepositoryMock)
			if tt.setupMock != nil {
				tt.setupMock(repoMock)
			}
			svc := admin.New(repoMock, newNoopLogger())

			affected, err := svc.Execute(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAffected, affected)
			}
			repoMock.AssertExpectations(t)
		})
	}
}
