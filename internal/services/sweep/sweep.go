// Package sweep реализует периодическое понижение истёкших подписок:
// пользователи с закончившимся оплаченным периодом или исчерпанной квотой
// переводятся на бесплатный тариф, уведомление уходит в очередь рассылки.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/models"
	"github.com/cliplens/cliplens-backend/internal/rabbitmq"
)

// Repository описывает операции хранилища, нужные обходу подписок.
type Repository interface {
	ListSweepCandidates(ctx context.Context) ([]*models.Subscription, error)
	DemoteToFree(ctx context.Context, sub *models.Subscription, reason string) error
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// Publisher описывает публикацию сообщения в очередь уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Service — обход подписок с понижением истёкших.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр сервиса обхода.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Причины понижения в журнале событий.
const (
	reasonPeriodExpired  = "period_expired"
	reasonQuotaExhausted = "quota_exhausted"
)

// Run обходит платные подписки в статусах active и paused и понижает
// истёкшие до бесплатного тарифа. Ошибка по отдельной строке логируется,
// обход продолжается. Возвращает число понижённых подписок.
func (s *Service) Run(ctx context.Context, now time.Time) (int, error) {
	const op = "sweep.Run"

	candidates, err := s.repo.ListSweepCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	demoted := 0
	for _, sub := range candidates {
		reason := ""
		switch {
		case sub.Expired(now):
			reason = reasonPeriodExpired
		case sub.QuotaExhausted():
			reason = reasonQuotaExhausted
		default:
			continue
		}

		if err := s.repo.DemoteToFree(ctx, sub, reason); err != nil {
			s.log.Error("failed to demote subscription",
				slog.Int("subscription_id", sub.ID),
				slog.String("user_uid", sub.UserUID), sl.Err(err))
			continue
		}
		demoted++
		s.log.Info("subscription demoted",
			slog.Int("subscription_id", sub.ID),
			slog.String("user_uid", sub.UserUID),
			slog.String("reason", reason))

		s.notifyDemotion(ctx, sub)
	}
	return demoted, nil
}

func (s *Service) notifyDemotion(ctx context.Context, sub *models.Subscription) {
	profile, err := s.repo.GetProfile(ctx, sub.UserUID)
	if err != nil {
		s.log.Error("failed to load profile for notification",
			slog.String("user_uid", sub.UserUID), sl.Err(err))
		return
	}
	msg := models.ExpiredEmail{
		Email:  profile.Email,
		Locale: profile.Locale,
		Plan:   sub.Plan,
	}
	if err := s.publisher.Publish(rabbitmq.Exchange, rabbitmq.ExpiredRoutingKey, msg); err != nil {
		s.log.Error("failed to publish expiration notice",
			slog.String("user_uid", sub.UserUID), sl.Err(err))
	}
}
