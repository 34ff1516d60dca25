package models

import "time"

// Plan описывает тариф и его цены в минорных единицах валюты.
type Plan struct {
	Name         string
	MonthlyPrice int64
	YearlyPrice  int64
	QuotaTotal   int // Квота анализов на период, 0 — безлимит
}

// PriceFor возвращает цену тарифа для указанного биллингового периода.
func (p *Plan) PriceFor(billing string) int64 {
	if billing == "monthly" {
		return p.MonthlyPrice
	}
	return p.YearlyPrice
}

// Типы событий журнала подписок.
const (
	EventPaymentCompleted = "payment_completed"
	EventPaymentFailed    = "payment_failed"
	EventCanceled         = "canceled"
	EventResumed          = "resumed"
	EventDowngraded       = "downgraded"
)

// SubscriptionEvent — строка журнала переходов состояния подписки.
type SubscriptionEvent struct {
	ID             int
	UserUID        string
	SubscriptionID int
	EventType      string
	Detail         string
	CreatedAt      time.Time
}
