package authemail_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/cliplens-backend/internal/services/authemail"
)

type LinkGeneratorMock struct {
	mock.Mock
}

func (m *LinkGeneratorMock) GenerateActionLink(email, linkType string) (string, error) {
	args := m.Called(email, linkType)
	return args.String(0), args.Error(1)
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

func TestSend_UsesSuppliedLink(t *testing.T) {
	links := new(LinkGeneratorMock)
	sender := new(SenderMock)
	svc := authemail.New(links, sender, newNoopLogger())

	sender.On("Send", "user@example.com", mock.Anything, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, "https://cliplens.app/confirm?token=t1")
	})).Return(nil).Once()

	err := svc.Send(context.Background(), authemail.Request{
		Type:       "signup",
		Email:      "user@example.com",
		Locale:     "en",
		ActionLink: "https://cliplens.app/confirm?token=t1",
	})
	require.NoError(t, err)
	links.AssertNotCalled(t, "GenerateActionLink", mock.Anything, mock.Anything)
	sender.AssertExpectations(t)
}

func TestSend_GeneratesMissingLink(t *testing.T) {
	links := new(LinkGeneratorMock)
	sender := new(SenderMock)
	svc := authemail.New(links, sender, newNoopLogger())

	links.On("GenerateActionLink", "user@example.com", "recovery").
		Return("https://cliplens.app/auth/confirm?type=recovery&token=h1", nil).Once()
	sender.On("Send", "user@example.com", mock.Anything, mock.Anything).Return(nil).Once()

	err := svc.Send(context.Background(), authemail.Request{
		Type:   "recovery",
		Email:  "user@example.com",
		Locale: "ru",
	})
	require.NoError(t, err)
	links.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestSend_UnknownType(t *testing.T) {
	svc := authemail.New(new(LinkGeneratorMock), new(SenderMock), newNoopLogger())

	err := svc.Send(context.Background(), authemail.Request{
		Type:  "magic_login",
		Email: "user@example.com",
	})
	assert.ErrorIs(t, err, authemail.ErrUnknownType)
}

func TestSend_LinkGenerationFailure(t *testing.T) {
	links := new(LinkGeneratorMock)
	sender := new(SenderMock)
	svc := authemail.New(links, sender, newNoopLogger())

	links.On("GenerateActionLink", mock.Anything, mock.Anything).
		Return("", errors.New("provider unavailable")).Once()

	err := svc.Send(context.Background(), authemail.Request{
		Type:  "signup",
		Email: "user@example.com",
	})
	assert.Error(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
