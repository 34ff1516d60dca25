package paymentgateway

// CreateOrderRequest — запрос на инициализацию заказа у шлюза.
type CreateOrderRequest struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Period      string `json:"recurring_period,omitempty"`
	CallbackURL string `json:"callback_url"`
	IPNURL      string `json:"ipn_url"`
}

// CreateOrderResponse — ответ шлюза на инициализацию заказа.
// Code, равный нулю, означает успех; любой другой код — отказ.
type CreateOrderResponse struct {
	Code              int    `json:"code"`
	Message           string `json:"message,omitempty"`
	RedirectURL       string `json:"redirect_url,omitempty"`
	RecurringChargeID string `json:"recurring_charge_id,omitempty"`
}

// Notification — уведомление о результате оплаты. Приходит двумя путями:
// синхронный браузерный callback (query-параметры) и асинхронный IPN (JSON).
type Notification struct {
	Reference         string `json:"reference"`
	StatusCode        int    `json:"status_code"`
	Message           string `json:"message,omitempty"`
	RecurringChargeID string `json:"recurring_charge_id,omitempty"`
}

// Success сообщает, обозначает ли уведомление успешную оплату.
func (n *Notification) Success() bool {
	return n.StatusCode == 0
}
