// Package initiate реализует HTTP-обработчик инициализации оплаты подписки.
//
// Handler принимает тариф и биллинговый период, создает заказ и возвращает
// ссылку заказа и URL страницы оплаты шлюза.
package initiate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cliplens/cliplens-backend/internal/http/middlewarectx"
	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/services/payment"
)

// Service описывает интерфейс платёжного сервиса.
type Service interface {
	Initiate(ctx context.Context, userUID, plan, billingPeriod string) (ref, redirectURL string, err error)
}

// Handler управляет HTTP-запросами инициализации оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Request — тело запроса инициализации оплаты.
type Request struct {
	Plan   string `json:"plan" validate:"required"`
	Period string `json:"period" validate:"required,oneof=monthly yearly"`
}

// ServeHTTP godoc
// @Summary Инициализировать оплату подписки
// @Description Создает заказ у платёжного шлюза и возвращает URL страницы оплаты.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Тариф и период"
// @Success 200 {object} map[string]any "Ссылка заказа и URL оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный тариф"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Шлюз отклонил заказ"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/initiate [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.initiate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	ref, redirectURL, err := h.service.Initiate(r.Context(), userUID, req.Plan, req.Period)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrUnknownPlan):
			log.Error("unknown plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, payment.ErrInvalidPeriod):
			log.Error("invalid period", slog.String("period", req.Period))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid billing period"))
		case errors.Is(err, payment.ErrGatewayDecline):
			log.Error("gateway declined order")
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment gateway declined the order"))
		default:
			log.Error("failed to initiate payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not initiate payment"))
		}
		return
	}

	log.Info("payment initiated", slog.String("reference", ref))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reference":    ref,
		"redirect_url": redirectURL,
	}))
}
