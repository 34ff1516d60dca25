package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cliplens/cliplens-backend/internal/lib/period"
	"github.com/cliplens/cliplens-backend/internal/models"
)

// ErrNoSubscription возвращается, когда у пользователя нет подходящей подписки.
var ErrNoSubscription = errors.New("subscription not found")

// ErrOrderFinalized возвращается, когда заказ уже находится в терминальном
// статусе и повторное уведомление не должно менять состояние.
var ErrOrderFinalized = errors.New("order already finalized")

func orderFinalized(status string) bool {
	s := models.OrderStatus(status)
	return s == models.OrderCompleted || s == models.OrderFailed
}

const subscriptionColumns = `id, user_uid, plan, status, period,
	current_period_start, current_period_end, auto_renew,
	COALESCE(recurring_charge_id, ''), usage_quota_used, usage_quota_total, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	var status string
	err := row.Scan(&sub.ID, &sub.UserUID, &sub.Plan, &status, &sub.Period,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.AutoRenew,
		&sub.RecurringChargeID, &sub.UsageQuotaUsed, &sub.UsageQuotaTotal, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.Status = models.SubscriptionStatus(status)
	return &sub, nil
}

// GetSubscription возвращает подписку пользователя на указанный тариф.
func (s *Storage) GetSubscription(ctx context.Context, userUID, plan string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_uid = $1 AND plan = $2`,
		userUID, plan)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// LatestCancellable возвращает самую свежую подписку пользователя
// в статусе active или paused.
func (s *Storage) LatestCancellable(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.LatestCancellable"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE user_uid = $1 AND status IN ('active', 'paused')
		 ORDER BY updated_at DESC
		 LIMIT 1`, userUID)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ApplyPaymentSuccess применяет успешное уведомление шлюза одной транзакцией:
// заказ переводится в completed, подписка по ключу (user_uid, plan) продлевается
// ровно на один биллинговый интервал, профиль зеркалируется, пишется событие.
// Строка заказа блокируется на время транзакции, поэтому два одновременных
// уведомления по одной ссылке сериализуются: второе увидит терминальный
// статус под блокировкой и вернёт ErrOrderFinalized, не продлевая подписку.
func (s *Storage) ApplyPaymentSuccess(ctx context.Context, order *models.Order, plan *models.Plan, recurringChargeID string, now time.Time) (*models.Subscription, error) {
	const op = "storage.ApplyPaymentSuccess"

	var result *models.Subscription
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var current string
		if err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			order.ID).Scan(&current); err != nil {
			return err
		}
		if orderFinalized(current) {
			return ErrOrderFinalized
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
			string(models.OrderCompleted), order.ID); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx,
			`SELECT `+subscriptionColumns+`
			 FROM subscriptions WHERE user_uid = $1 AND plan = $2 FOR UPDATE`,
			order.UserUID, order.Plan)
		existing, err := scanSubscription(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		billing := period.Billing(order.Period)
		var sub models.Subscription
		if existing == nil {
			end := period.Add(now, billing)
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO subscriptions (user_uid, plan, status, period,
				     current_period_start, current_period_end, auto_renew,
				     recurring_charge_id, usage_quota_used, usage_quota_total)
				 VALUES ($1, $2, $3, $4, $5, $6, true, $7, 0, $8)
				 RETURNING id`,
				order.UserUID, order.Plan, string(models.SubscriptionActive), order.Period,
				now, end, recurringChargeID, plan.QuotaTotal).Scan(&sub.ID); err != nil {
				return err
			}
			sub.UserUID = order.UserUID
			sub.Plan = order.Plan
			sub.Status = models.SubscriptionActive
			sub.CurrentPeriodStart = now
			sub.CurrentPeriodEnd = end
		} else {
			// Повторная оплата того же тарифа продлевает существующую строку.
			end := period.NextEnd(existing.CurrentPeriodEnd, now, billing)
			if _, err := tx.ExecContext(ctx,
				`UPDATE subscriptions
				 SET status = $1, period = $2, current_period_end = $3, auto_renew = true,
				     recurring_charge_id = COALESCE(NULLIF($4, ''), recurring_charge_id),
				     usage_quota_total = $5, updated_at = now()
				 WHERE id = $6`,
				string(models.SubscriptionActive), order.Period, end,
				recurringChargeID, plan.QuotaTotal, existing.ID); err != nil {
				return err
			}
			sub = *existing
			sub.Status = models.SubscriptionActive
			sub.CurrentPeriodEnd = end
		}

		if err := mirrorProfile(ctx, tx, order.UserUID, order.Plan, models.SubscriptionActive); err != nil {
			return err
		}
		if err := insertEvent(ctx, tx, order.UserUID, sub.ID, models.EventPaymentCompleted, order.Reference); err != nil {
			return err
		}
		result = &sub
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ApplyPaymentFailure применяет неуспешное уведомление шлюза одной транзакцией:
// заказ переводится в failed, уже связанная подписка (user_uid, plan), если она
// есть, ставится на паузу. Даты окончания не меняются. Заказ в терминальном
// статусе даёт ErrOrderFinalized без изменений.
func (s *Storage) ApplyPaymentFailure(ctx context.Context, order *models.Order) error {
	const op = "storage.ApplyPaymentFailure"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var current string
		if err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			order.ID).Scan(&current); err != nil {
			return err
		}
		if orderFinalized(current) {
			return ErrOrderFinalized
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
			string(models.OrderFailed), order.ID); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx,
			`SELECT `+subscriptionColumns+`
			 FROM subscriptions WHERE user_uid = $1 AND plan = $2 FOR UPDATE`,
			order.UserUID, order.Plan)
		existing, err := scanSubscription(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET status = $1, updated_at = now() WHERE id = $2`,
			string(models.SubscriptionPaused), existing.ID); err != nil {
			return err
		}
		if err := mirrorProfile(ctx, tx, order.UserUID, existing.Plan, models.SubscriptionPaused); err != nil {
			return err
		}
		return insertEvent(ctx, tx, order.UserUID, existing.ID, models.EventPaymentFailed, order.Reference)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CancelSubscription помечает подписку отменённой, выключает автопродление,
// зеркалирует профиль и пишет событие — одной транзакцией.
func (s *Storage) CancelSubscription(ctx context.Context, sub *models.Subscription) error {
	const op = "storage.CancelSubscription"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET status = $1, auto_renew = false, updated_at = now()
			 WHERE id = $2`,
			string(models.SubscriptionCanceled), sub.ID); err != nil {
			return err
		}
		if err := mirrorProfile(ctx, tx, sub.UserUID, sub.Plan, models.SubscriptionCanceled); err != nil {
			return err
		}
		return insertEvent(ctx, tx, sub.UserUID, sub.ID, models.EventCanceled, "")
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResumeSubscription возвращает приостановленную подписку в active.
func (s *Storage) ResumeSubscription(ctx context.Context, sub *models.Subscription) error {
	const op = "storage.ResumeSubscription"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET status = $1, auto_renew = true, updated_at = now()
			 WHERE id = $2`,
			string(models.SubscriptionActive), sub.ID); err != nil {
			return err
		}
		if err := mirrorProfile(ctx, tx, sub.UserUID, sub.Plan, models.SubscriptionActive); err != nil {
			return err
		}
		return insertEvent(ctx, tx, sub.UserUID, sub.ID, models.EventResumed, "")
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSweepCandidates возвращает платные подписки в статусе active или paused —
// кандидаты на понижение до бесплатного тарифа.
func (s *Storage) ListSweepCandidates(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListSweepCandidates"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE plan <> $1 AND status IN ('active', 'paused')
		 ORDER BY id`, models.PlanFree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DemoteToFree переводит истёкшую или исчерпавшую квоту подписку в статус
// expired и понижает профиль до бесплатного тарифа, пишет событие. Тариф
// строки подписки сохраняется: следующая оплата того же тарифа продлевает
// её, не конфликтуя с ограничением уникальности (user_uid, plan).
func (s *Storage) DemoteToFree(ctx context.Context, sub *models.Subscription, reason string) error {
	const op = "storage.DemoteToFree"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions
			 SET status = $1, auto_renew = false, updated_at = now()
			 WHERE id = $2`,
			string(models.SubscriptionExpired), sub.ID); err != nil {
			return err
		}
		if err := mirrorProfile(ctx, tx, sub.UserUID, models.PlanFree, models.SubscriptionExpired); err != nil {
			return err
		}
		return insertEvent(ctx, tx, sub.UserUID, sub.ID, models.EventDowngraded, reason)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
