package models

import "time"

// SubscriptionStatus — каноничный статус подписки.
// Ровно одно перечисление на сущность, без дублирующих полей статуса.
type SubscriptionStatus string

const (
	// SubscriptionActive — подписка оплачена и действует.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionPaused — подписка приостановлена (неуспешное продление).
	SubscriptionPaused SubscriptionStatus = "paused"
	// SubscriptionCanceled — подписка отменена пользователем.
	SubscriptionCanceled SubscriptionStatus = "canceled"
	// SubscriptionExpired — подписка истекла или квота исчерпана.
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Subscription представляет подписку пользователя на тариф.
// Пара (user_uid, plan) уникальна: повторная оплата того же тарифа
// продлевает существующую строку, а не создаёт новую.
type Subscription struct {
	ID                 int
	UserUID            string
	Plan               string
	Status             SubscriptionStatus
	Period             string    // monthly или yearly
	CurrentPeriodStart time.Time // Начало оплаченного периода
	CurrentPeriodEnd   time.Time // Конец оплаченного периода
	AutoRenew          bool      // Включено ли автосписание у шлюза
	RecurringChargeID  string    // Идентификатор рекуррентного платежа на стороне шлюза
	UsageQuotaUsed     int       // Израсходованная квота анализов
	UsageQuotaTotal    int       // Полная квота тарифа, 0 — безлимит
	UpdatedAt          time.Time
}

// Expired сообщает, истёк ли оплаченный период подписки к моменту now.
func (s *Subscription) Expired(now time.Time) bool {
	return s.CurrentPeriodEnd.Before(now)
}

// QuotaExhausted сообщает, исчерпана ли квота использования.
// Нулевая полная квота означает безлимит.
func (s *Subscription) QuotaExhausted() bool {
	return s.UsageQuotaTotal > 0 && s.UsageQuotaUsed >= s.UsageQuotaTotal
}
