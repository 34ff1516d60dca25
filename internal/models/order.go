package models

import "time"

// OrderStatus — каноничный статус заказа платёжного шлюза.
type OrderStatus string

const (
	// OrderPending — заказ создан, запрос к шлюзу ещё не выполнен.
	OrderPending OrderStatus = "pending"
	// OrderProcessing — шлюз вернул ссылку на оплату, ждём уведомление.
	OrderProcessing OrderStatus = "processing"
	// OrderCompleted — шлюз подтвердил успешную оплату.
	OrderCompleted OrderStatus = "completed"
	// OrderFailed — шлюз отклонил заказ либо оплата не прошла.
	OrderFailed OrderStatus = "failed"
)

// Order представляет одну попытку оплаты. Сопоставление асинхронных
// уведомлений шлюза выполняется по полю Reference.
type Order struct {
	ID              int
	Reference       string // Сгенерированная нами непрозрачная ссылка заказа
	UserUID         string
	Plan            string
	Period          string // Оплачиваемый период, monthly или yearly
	Amount          int64  // Сумма в минорных единицах валюты
	Currency        string
	Status          OrderStatus
	GatewayResponse []byte // Сырой JSON-ответ шлюза при инициализации
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LegacyPaymentStatus возвращает значение старого поля payment_status
// для клиентов, ещё не переведённых на каноничный статус.
func (o *Order) LegacyPaymentStatus() string {
	switch o.Status {
	case OrderCompleted:
		return "paid"
	case OrderFailed:
		return "failed"
	default:
		return "waiting"
	}
}
