// Package ipn реализует HTTP-обработчик асинхронных уведомлений платёжного
// шлюза об исходе оплаты.
//
// Подпись HMAC-SHA256 сырого тела проверяется по заголовку
// X-Gateway-Signature до какой-либо обработки.
package ipn

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/paymentgateway"
	"github.com/cliplens/cliplens-backend/internal/services/payment"
)

// SignatureHeader — заголовок с подписью сырого тела уведомления.
const SignatureHeader = "X-Gateway-Signature"

// Service описывает интерфейс платёжного сервиса.
type Service interface {
	HandleNotification(ctx context.Context, n *paymentgateway.Notification) error
}

// Handler управляет асинхронными уведомлениями шлюза.
type Handler struct {
	log           *slog.Logger
	service       Service
	gatewaySecret string
}

// New создает новый Handler с переданными логгером, сервисом и секретом шлюза.
func New(log *slog.Logger, service Service, gatewaySecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		gatewaySecret: gatewaySecret,
	}
}

// ServeHTTP godoc
// @Summary Асинхронное уведомление платёжного шлюза
// @Description Применяет результат оплаты по подписанному JSON-уведомлению шлюза.
// @Tags Payments
// @Accept  json
// @Param X-Gateway-Signature header string true "Подпись HMAC-SHA256 тела"
// @Success 200 {object} response.Response "Уведомление обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/ipn [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.ipn"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read ipn body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" || !paymentgateway.VerifyBody(h.gatewaySecret, body, signature) {
		log.Error("invalid or missing ipn signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var n paymentgateway.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Error("failed to unmarshal ipn payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if n.Reference == "" {
		log.Error("ipn payload has no reference")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("reference is required"))
		return
	}

	if err := h.service.HandleNotification(r.Context(), &n); err != nil {
		if errors.Is(err, payment.ErrOrderNotFound) {
			log.Error("order not found", slog.String("reference", n.Reference))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
			return
		}
		log.Error("failed to process ipn", slog.String("reference", n.Reference), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process notification"))
		return
	}

	log.Info("ipn processed", slog.String("reference", n.Reference), slog.Int("status_code", n.StatusCode))
	render.JSON(w, r, response.OK())
}
