// Package announcement реализует рассылку объявлений: создание записи,
// веер строк доставки по аудитории и публикацию почтовых уведомлений
// в очередь на каждого получателя.
package announcement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/models"
	"github.com/cliplens/cliplens-backend/internal/rabbitmq"
)

// Repository описывает операции хранилища для рассылки объявлений.
type Repository interface {
	CreateAnnouncementWithFanout(ctx context.Context, ann models.Announcement) (int, []*models.Profile, error)
}

// Publisher описывает публикацию сообщения в очередь уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Service — рассылка объявлений.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр сервиса объявлений.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Send создает объявление, раздаёт его профилям аудитории и ставит
// по одному почтовому уведомлению на получателя. Отказ публикации
// по отдельному получателю логируется, рассылка продолжается.
// Возвращает идентификатор объявления и число получателей.
func (s *Service) Send(ctx context.Context, ann models.Announcement) (int, int, error) {
	const op = "announcement.Send"

	id, recipients, err := s.repo.CreateAnnouncementWithFanout(ctx, ann)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, profile := range recipients {
		msg := models.AnnouncementEmail{
			Email:  profile.Email,
			Locale: profile.Locale,
			Title:  ann.Title,
			Body:   ann.Body,
		}
		if err := s.publisher.Publish(rabbitmq.Exchange, rabbitmq.AnnouncementRoutingKey, msg); err != nil {
			s.log.Error("failed to publish announcement email",
				slog.String("email", profile.Email), sl.Err(err))
		}
	}

	s.log.Info("announcement sent",
		slog.Int("announcement_id", id),
		slog.String("audience", ann.Audience),
		slog.Int("recipients", len(recipients)))
	return id, len(recipients), nil
}
