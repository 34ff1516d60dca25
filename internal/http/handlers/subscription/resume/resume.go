// Package resume реализует HTTP-обработчик возобновления приостановленной
// подписки текущего пользователя.
package resume

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cliplens/cliplens-backend/internal/http/middlewarectx"
	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/services/payment"
	"github.com/cliplens/cliplens-backend/internal/storage/repository"
)

// Service описывает интерфейс платёжного сервиса.
type Service interface {
	Resume(ctx context.Context, userUID string) error
}

// Handler управляет HTTP-запросами возобновления подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Возобновить подписку
// @Description Возобновляет приостановленную подписку пользователя и автосписание.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Подписка возобновлена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка не приостановлена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/resume [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.resume"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Resume(r.Context(), userUID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSubscription):
			log.Error("no subscription to resume", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, payment.ErrNotPaused):
			log.Error("subscription is not paused", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("subscription is not paused"))
		default:
			log.Error("failed to resume subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resume subscription"))
		}
		return
	}

	log.Info("subscription resumed", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OK())
}
