// Package payment реализует жизненный цикл оплаты подписки: инициализацию
// заказа у платёжного шлюза, обработку уведомлений об оплате и управление
// рекуррентными списаниями.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cliplens/cliplens-backend/internal/lib/period"
	"github.com/cliplens/cliplens-backend/internal/lib/reference"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/models"
	"github.com/cliplens/cliplens-backend/internal/paymentgateway"
	"github.com/cliplens/cliplens-backend/internal/storage/repository"
)

// Ошибки уровня сервиса, по которым обработчики выбирают HTTP статус.
var (
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrInvalidPeriod  = errors.New("invalid billing period")
	ErrOrderNotFound  = errors.New("order not found")
	ErrGatewayDecline = errors.New("gateway declined order")
	ErrNotPaused      = errors.New("subscription is not paused")
)

// Repository описывает операции хранилища, нужные платёжному сервису.
type Repository interface {
	GetPlan(ctx context.Context, name string) (*models.Plan, error)
	CreateOrder(ctx context.Context, order models.Order) (int, error)
	GetOrderByReference(ctx context.Context, ref string) (*models.Order, error)
	MarkOrderProcessing(ctx context.Context, ref string, gatewayResponse []byte) error
	MarkOrderFailed(ctx context.Context, ref string) error
	ApplyPaymentSuccess(ctx context.Context, order *models.Order, plan *models.Plan, recurringChargeID string, now time.Time) (*models.Subscription, error)
	ApplyPaymentFailure(ctx context.Context, order *models.Order) error
	LatestCancellable(ctx context.Context, userUID string) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, sub *models.Subscription) error
	ResumeSubscription(ctx context.Context, sub *models.Subscription) error
}

// Gateway описывает клиент платёжного шлюза.
type Gateway interface {
	CreateOrder(reqParams paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, []byte, error)
	StopRecurring(chargeID string) error
	ResumeRecurring(chargeID string) error
}

// PlanCache — кэш справочных данных тарифов. Может быть nil,
// тогда тарифы всегда читаются из хранилища.
type PlanCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// URLs — адреса, передаваемые шлюзу при инициализации заказа.
type URLs struct {
	Callback string
	IPN      string
}

const (
	defaultCurrency = "RUB"
	planCacheTTL    = 10 * time.Minute
)

// Service связывает хранилище заказов и подписок с платёжным шлюзом.
type Service struct {
	repo    Repository
	gateway Gateway
	cache   PlanCache
	urls    URLs
	log     *slog.Logger
}

// New создает новый экземпляр платёжного сервиса.
func New(repo Repository, gateway Gateway, cache PlanCache, urls URLs, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		cache:   cache,
		urls:    urls,
		log:     log,
	}
}

// getPlan читает тариф из кэша, при промахе обращается к хранилищу
// и кладёт результат в кэш. Ошибки кэша не прерывают операцию.
func (s *Service) getPlan(ctx context.Context, name string) (*models.Plan, error) {
	key := "plan:" + name
	if s.cache != nil {
		var cached models.Plan
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Error("plan cache read failed", slog.String("plan", name), sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	plan, err := s.repo.GetPlan(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, plan, planCacheTTL); err != nil {
			s.log.Error("plan cache write failed", slog.String("plan", name), sl.Err(err))
		}
	}
	return plan, nil
}

// Initiate создает pending-заказ и инициализирует оплату у шлюза.
// Возвращает ссылку заказа и URL страницы оплаты.
func (s *Service) Initiate(ctx context.Context, userUID, plan, billingPeriod string) (ref, redirectURL string, err error) {
	const op = "payment.Initiate"

	if !period.Billing(billingPeriod).Valid() {
		return "", "", ErrInvalidPeriod
	}

	planRow, err := s.getPlan(ctx, plan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrUnknownPlan
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	ref = reference.New()
	order := models.Order{
		Reference: ref,
		UserUID:   userUID,
		Plan:      plan,
		Period:    billingPeriod,
		Amount:    planRow.PriceFor(billingPeriod),
		Currency:  defaultCurrency,
		Status:    models.OrderPending,
	}
	if _, err := s.repo.CreateOrder(ctx, order); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	resp, raw, err := s.gateway.CreateOrder(paymentgateway.CreateOrderRequest{
		Reference:   ref,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Description: fmt.Sprintf("ClipLens %s (%s)", plan, billingPeriod),
		Period:      billingPeriod,
		CallbackURL: s.urls.Callback,
		IPNURL:      s.urls.IPN,
	})
	if err != nil {
		s.log.Error("gateway order init failed", slog.String("reference", ref), sl.Err(err))
		if markErr := s.repo.MarkOrderFailed(ctx, ref); markErr != nil {
			s.log.Error("failed to mark order failed", sl.Err(markErr))
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.Code != 0 {
		s.log.Error("gateway declined order",
			slog.String("reference", ref),
			slog.Int("code", resp.Code),
			slog.String("message", resp.Message))
		if markErr := s.repo.MarkOrderFailed(ctx, ref); markErr != nil {
			s.log.Error("failed to mark order failed", sl.Err(markErr))
		}
		return "", "", ErrGatewayDecline
	}

	if err := s.repo.MarkOrderProcessing(ctx, ref, raw); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return ref, resp.RedirectURL, nil
}

// HandleNotification применяет уведомление шлюза об исходе оплаты.
// Уведомление с нулевым кодом статуса продлевает подписку, любое другое
// переводит заказ в failed. Повторное уведомление по завершённому заказу
// не меняет состояние.
func (s *Service) HandleNotification(ctx context.Context, n *paymentgateway.Notification) error {
	const op = "payment.HandleNotification"

	order, err := s.repo.GetOrderByReference(ctx, n.Reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if order.Status == models.OrderCompleted || order.Status == models.OrderFailed {
		s.log.Info("duplicate notification ignored",
			slog.String("reference", n.Reference),
			slog.String("status", string(order.Status)))
		return nil
	}

	if !n.Success() {
		if err := s.repo.ApplyPaymentFailure(ctx, order); err != nil {
			if errors.Is(err, repository.ErrOrderFinalized) {
				s.log.Info("duplicate notification ignored",
					slog.String("reference", n.Reference))
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("payment failed",
			slog.String("reference", n.Reference),
			slog.Int("status_code", n.StatusCode),
			slog.String("message", n.Message))
		return nil
	}

	planRow, err := s.getPlan(ctx, order.Plan)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sub, err := s.repo.ApplyPaymentSuccess(ctx, order, planRow, n.RecurringChargeID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrOrderFinalized) {
			s.log.Info("duplicate notification ignored",
				slog.String("reference", n.Reference))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment completed",
		slog.String("reference", n.Reference),
		slog.String("user_uid", order.UserUID),
		slog.String("plan", sub.Plan),
		slog.Time("period_end", sub.CurrentPeriodEnd))
	return nil
}

// Cancel отменяет самую свежую активную или приостановленную подписку
// пользователя. Остановка рекуррентного списания у шлюза выполняется
// по возможности: её отказ логируется и не прерывает отмену.
func (s *Service) Cancel(ctx context.Context, userUID string) error {
	const op = "payment.Cancel"

	sub, err := s.repo.LatestCancellable(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			return repository.ErrNoSubscription
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if sub.RecurringChargeID != "" {
		if err := s.gateway.StopRecurring(sub.RecurringChargeID); err != nil {
			s.log.Error("failed to stop recurring charge",
				slog.String("charge_id", sub.RecurringChargeID), sl.Err(err))
		}
	}

	if err := s.repo.CancelSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Resume возобновляет приостановленную подписку пользователя.
func (s *Service) Resume(ctx context.Context, userUID string) error {
	const op = "payment.Resume"

	sub, err := s.repo.LatestCancellable(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			return repository.ErrNoSubscription
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub.Status != models.SubscriptionPaused {
		return ErrNotPaused
	}

	if sub.RecurringChargeID != "" {
		if err := s.gateway.ResumeRecurring(sub.RecurringChargeID); err != nil {
			s.log.Error("failed to resume recurring charge",
				slog.String("charge_id", sub.RecurringChargeID), sl.Err(err))
		}
	}

	if err := s.repo.ResumeSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
