package contact_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/cliplens-backend/internal/services/contact"
)

type CounterMock struct {
	mock.Mock
}

func (m *CounterMock) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(to, subject, html string) error {
	args := m.Called(to, subject, html)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func validRequest() contact.Request {
	return contact.Request{
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "I would like to know more about the business plan.",
	}
}

func TestSubmit_HoneypotSilentlySwallowed(t *testing.T) {
	counter := new(CounterMock)
	sender := new(SenderMock)
	svc := contact.New(counter, sender, "team@cliplens.app", newNoopLogger())

	req := validRequest()
	req.Honeypot = "http://spam.example.com"

	err := svc.Submit(context.Background(), "203.0.113.7", req)
	require.NoError(t, err)
	counter.AssertNotCalled(t, "Hit", mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_SendsToInbox(t *testing.T) {
	counter := new(CounterMock)
	sender := new(SenderMock)
	svc := contact.New(counter, sender, "team@cliplens.app", newNoopLogger())

	counter.On("Hit", mock.Anything, "contact:203.0.113.7", 10*time.Minute).
		Return(int64(1), nil).Once()
	sender.On("Send", "team@cliplens.app", mock.Anything, mock.MatchedBy(func(html string) bool {
		return len(html) > 0
	})).Return(nil).Once()

	err := svc.Submit(context.Background(), "203.0.113.7", validRequest())
	require.NoError(t, err)
	counter.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestSubmit_SixthRequestRateLimited(t *testing.T) {
	counter := new(CounterMock)
	sender := new(SenderMock)
	svc := contact.New(counter, sender, "team@cliplens.app", newNoopLogger())

	counter.On("Hit", mock.Anything, "contact:203.0.113.7", 10*time.Minute).
		Return(int64(6), nil).Once()

	err := svc.Submit(context.Background(), "203.0.113.7", validRequest())
	assert.ErrorIs(t, err, contact.ErrRateLimited)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_SendFailureSurfaces(t *testing.T) {
	counter := new(CounterMock)
	sender := new(SenderMock)
	svc := contact.New(counter, sender, "team@cliplens.app", newNoopLogger())

	counter.On("Hit", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil).Once()
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("email api unavailable")).Once()

	err := svc.Submit(context.Background(), "203.0.113.7", validRequest())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contact.ErrRateLimited)
}
