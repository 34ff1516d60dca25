// Package sender реализует рабочий процесс рассылки: разбирает сообщения
// почтовых очередей и отправляет письма через транзакционный email-API.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/mailtemplates"
	"github.com/cliplens/cliplens-backend/internal/models"
)

// EmailSender описывает отправку письма через почтовый API.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Service — обработчик сообщений почтовых очередей.
type Service struct {
	sender EmailSender
	log    *slog.Logger
}

// New создает новый экземпляр сервиса рассылки.
func New(sender EmailSender, log *slog.Logger) *Service {
	return &Service{
		sender: sender,
		log:    log,
	}
}

// HandleAnnouncement отправляет письмо-объявление одному получателю.
func (s *Service) HandleAnnouncement(body []byte) error {
	const op = "sender.HandleAnnouncement"

	var message models.AnnouncementEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	subject, html, err := mailtemplates.Render(mailtemplates.KindAnnouncement, message.Locale,
		mailtemplates.AnnouncementData{Title: message.Title, Body: message.Body})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sender.Send(message.Email, subject, html); err != nil {
		s.log.Error("failed to send announcement email",
			slog.String("email", message.Email), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("announcement email sent", slog.String("email", message.Email))
	return nil
}

// HandleExpired отправляет уведомление о понижении истёкшей подписки.
func (s *Service) HandleExpired(body []byte) error {
	const op = "sender.HandleExpired"

	var message models.ExpiredEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	subject, html, err := mailtemplates.Render(mailtemplates.KindExpired, message.Locale,
		mailtemplates.ExpiredData{Plan: message.Plan})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sender.Send(message.Email, subject, html); err != nil {
		s.log.Error("failed to send expiration email",
			slog.String("email", message.Email), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("expiration email sent", slog.String("email", message.Email))
	return nil
}
