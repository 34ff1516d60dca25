// Package period содержит арифметику биллинговых периодов подписки.
package period

import "time"

// Billing обозначает длительность биллингового периода.
type Billing string

const (
	// Monthly — месячный период оплаты.
	Monthly Billing = "monthly"
	// Yearly — годовой период оплаты.
	Yearly Billing = "yearly"
)

// Valid сообщает, является ли значение известным периодом.
func (b Billing) Valid() bool {
	return b == Monthly || b == Yearly
}

// Add продлевает дату ровно на один биллинговый интервал:
// на месяц для monthly, на год для любого другого значения.
func Add(from time.Time, b Billing) time.Time {
	if b == Monthly {
		return from.AddDate(0, 1, 0)
	}
	return from.AddDate(1, 0, 0)
}

// NextEnd вычисляет новую дату окончания подписки при успешной оплате.
// Если текущая дата окончания ещё в будущем, период продлевается от неё,
// иначе отсчитывается от момента оплаты.
func NextEnd(currentEnd, paidAt time.Time, b Billing) time.Time {
	if currentEnd.After(paidAt) {
		return Add(currentEnd, b)
	}
	return Add(paidAt, b)
}
