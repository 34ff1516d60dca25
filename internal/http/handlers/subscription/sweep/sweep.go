// Package sweep реализует HTTP-обработчик планового обхода подписок.
//
// Вызывается кроном по общему секрету в заголовке X-Cron-Secret,
// сравнение выполняется за постоянное время.
package sweep

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
)

// SecretHeader — заголовок с общим секретом крона.
const SecretHeader = "X-Cron-Secret"

// Service описывает интерфейс сервиса обхода подписок.
type Service interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

// Handler управляет запусками обхода подписок.
type Handler struct {
	log        *slog.Logger
	service    Service
	cronSecret string
}

// New создает новый Handler с переданными логгером, сервисом и секретом крона.
func New(log *slog.Logger, service Service, cronSecret string) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		cronSecret: cronSecret,
	}
}

// ServeHTTP godoc
// @Summary Обход истёкших подписок
// @Description Понижает подписки с истёкшим периодом или исчерпанной квотой до бесплатного тарифа.
// @Tags Internal
// @Produce  json
// @Param X-Cron-Secret header string true "Общий секрет крона"
// @Success 200 {object} map[string]any "Число понижённых подписок"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /internal/subscriptions/sweep [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.sweep"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	secret := r.Header.Get(SecretHeader)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cronSecret)) != 1 {
		log.Error("invalid or missing cron secret")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	demoted, err := h.service.Run(r.Context(), time.Now())
	if err != nil {
		log.Error("sweep failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("sweep failed"))
		return
	}

	log.Info("sweep finished", slog.Int("demoted", demoted))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"demoted": demoted,
	}))
}
