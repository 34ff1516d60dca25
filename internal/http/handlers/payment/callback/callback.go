// Package callback реализует HTTP-обработчик браузерного возврата со
// страницы оплаты шлюза.
//
// Шлюз редиректит пользователя с query-параметрами результата и подписью.
// Уведомление применяется к заказу, после чего пользователь перенаправляется
// на страницу результата фронтенда независимо от исхода обработки: ошибка
// логируется, но редирект выполняется.
package callback

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/paymentgateway"
)

// Service описывает интерфейс платёжного сервиса.
type Service interface {
	HandleNotification(ctx context.Context, n *paymentgateway.Notification) error
}

// Handler управляет браузерными возвратами платёжного шлюза.
type Handler struct {
	log           *slog.Logger
	service       Service
	gatewaySecret string
	resultURL     string
}

// New создает новый Handler. resultURL — страница результата фронтенда.
func New(log *slog.Logger, service Service, gatewaySecret, resultURL string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		gatewaySecret: gatewaySecret,
		resultURL:     resultURL,
	}
}

// ServeHTTP godoc
// @Summary Браузерный возврат платёжного шлюза
// @Description Применяет результат оплаты и перенаправляет пользователя на страницу результата.
// @Tags Payments
// @Param reference query string true "Ссылка заказа"
// @Param status query int true "Код статуса оплаты, 0 — успех"
// @Param signature query string true "Подпись HMAC-SHA256"
// @Success 302 "Редирект на страницу результата"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /payments/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	reference := q.Get("reference")
	signature := q.Get("signature")
	statusCode, err := strconv.Atoi(q.Get("status"))
	if err != nil || reference == "" {
		log.Error("malformed callback query", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !paymentgateway.VerifyCallback(h.gatewaySecret, reference, statusCode, signature) {
		log.Error("invalid callback signature", slog.String("reference", reference))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	n := &paymentgateway.Notification{
		Reference:         reference,
		StatusCode:        statusCode,
		Message:           q.Get("message"),
		RecurringChargeID: q.Get("recurring_charge_id"),
	}

	outcome := "success"
	if !n.Success() {
		outcome = "failure"
	}
	if err := h.service.HandleNotification(r.Context(), n); err != nil {
		// Пользователя всё равно ведём на страницу результата: заказ
		// окончательно согласует асинхронный IPN.
		log.Error("failed to process callback", slog.String("reference", reference), sl.Err(err))
		outcome = "pending"
	}

	target := h.resultURL + "?" + url.Values{
		"reference": {reference},
		"outcome":   {outcome},
	}.Encode()
	log.Info("callback processed", slog.String("reference", reference), slog.String("outcome", outcome))
	http.Redirect(w, r, target, http.StatusFound)
}
