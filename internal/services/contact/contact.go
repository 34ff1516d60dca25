// Package contact реализует приём сообщений формы обратной связи:
// honeypot-фильтр, общий для всех инстансов лимит по IP и отправку
// письма в командный ящик.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/mailtemplates"
)

// ErrRateLimited возвращается при превышении лимита сообщений с одного IP.
var ErrRateLimited = errors.New("too many contact requests")

// Лимит сообщений с одного IP в скользящем окне.
const (
	rateLimit  = 5
	rateWindow = 10 * time.Minute
)

// Counter описывает разделяемый счётчик с истечением по окну.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// EmailSender описывает отправку письма через почтовый API.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Request — проверенное сообщение формы обратной связи.
// Honeypot — скрытое поле формы: живые пользователи его не заполняют.
type Request struct {
	Name     string
	Email    string
	Message  string
	Honeypot string
}

// Service принимает сообщения формы обратной связи.
type Service struct {
	counter Counter
	sender  EmailSender
	inbox   string
	log     *slog.Logger
}

// New создает новый экземпляр сервиса обратной связи.
func New(counter Counter, sender EmailSender, inbox string, log *slog.Logger) *Service {
	return &Service{
		counter: counter,
		sender:  sender,
		inbox:   inbox,
		log:     log,
	}
}

// Submit обрабатывает сообщение формы. Заполненный honeypot тихо
// проглатывается, чтобы бот получил неотличимый от успеха ответ.
func (s *Service) Submit(ctx context.Context, ip string, req Request) error {
	const op = "contact.Submit"

	if req.Honeypot != "" {
		s.log.Info("honeypot triggered", slog.String("ip", ip))
		return nil
	}

	count, err := s.counter.Hit(ctx, "contact:"+ip, rateWindow)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count > rateLimit {
		s.log.Info("contact rate limit exceeded",
			slog.String("ip", ip), slog.Int64("count", count))
		return ErrRateLimited
	}

	subject, html, err := mailtemplates.Render(mailtemplates.KindContact, mailtemplates.LocaleEN,
		mailtemplates.ContactData{
			Name:    req.Name,
			Email:   req.Email,
			Message: req.Message,
		})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sender.Send(s.inbox, subject, html); err != nil {
		s.log.Error("failed to send contact email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
