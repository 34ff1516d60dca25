// Package authemail реализует хук провайдера идентификации: отправку
// писем подтверждения регистрации и восстановления пароля.
package authemail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cliplens/cliplens-backend/internal/identity"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/mailtemplates"
)

// ErrUnknownType возвращается для неизвестного типа письма.
var ErrUnknownType = errors.New("unknown auth email type")

// LinkGenerator описывает получение ссылки действия у провайдера идентификации.
type LinkGenerator interface {
	GenerateActionLink(email, linkType string) (string, error)
}

// EmailSender описывает отправку письма через почтовый API.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Request — запрос хука на отправку письма аутентификации.
// ActionLink может отсутствовать: тогда ссылка запрашивается у провайдера.
type Request struct {
	Type       string
	Email      string
	Locale     string
	ActionLink string
}

// Service отправляет письма аутентификации.
type Service struct {
	links  LinkGenerator
	sender EmailSender
	log    *slog.Logger
}

// New создает новый экземпляр сервиса писем аутентификации.
func New(links LinkGenerator, sender EmailSender, log *slog.Logger) *Service {
	return &Service{
		links:  links,
		sender: sender,
		log:    log,
	}
}

// Send собирает локализованное письмо и отправляет его адресату.
func (s *Service) Send(ctx context.Context, req Request) error {
	const op = "authemail.Send"

	var kind mailtemplates.Kind
	switch req.Type {
	case identity.LinkSignup:
		kind = mailtemplates.KindSignup
	case identity.LinkRecovery:
		kind = mailtemplates.KindRecovery
	default:
		return ErrUnknownType
	}

	link := req.ActionLink
	if link == "" {
		var err error
		link, err = s.links.GenerateActionLink(req.Email, req.Type)
		if err != nil {
			s.log.Error("failed to generate action link",
				slog.String("type", req.Type), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	subject, html, err := mailtemplates.Render(kind, req.Locale,
		mailtemplates.ActionLinkData{ActionLink: link})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sender.Send(req.Email, subject, html); err != nil {
		s.log.Error("failed to send auth email",
			slog.String("type", req.Type), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("auth email sent",
		slog.String("type", req.Type),
		slog.String("locale", mailtemplates.NormalizeLocale(req.Locale)))
	return nil
}
