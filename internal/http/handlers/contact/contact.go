// Package contact реализует HTTP-обработчик формы обратной связи.
//
// Handler валидирует сообщение, определяет IP отправителя и передаёт
// сообщение сервису. Заполненный honeypot получает обычный успешный
// ответ, чтобы бот не отличил фильтрацию от доставки.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	contactsvc "github.com/cliplens/cliplens-backend/internal/services/contact"
)

// Service описывает интерфейс сервиса обратной связи.
type Service interface {
	Submit(ctx context.Context, ip string, req contactsvc.Request) error
}

// Handler управляет HTTP-запросами формы обратной связи.
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

// Request — тело запроса формы обратной связи. Website — honeypot-поле.
type Request struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=20"`
	Website string `json:"website"`
}

// ServeHTTP godoc
// @Summary Отправить сообщение обратной связи
// @Description Принимает сообщение формы обратной связи и отправляет его команде.
// @Tags Contact
// @Accept  json
// @Produce  json
// @Param request body Request true "Сообщение"
// @Success 200 {object} response.Response "Сообщение принято"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Превышен лимит сообщений"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"
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

	// Заполненный honeypot минует валидацию: бот должен получить тот же
	// успешный ответ, что и живой отправитель
	if req.Website == "" {
		if err := h.validate.Struct(req); err != nil {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}
	}

	err := h.service.Submit(r.Context(), clientIP(r), contactsvc.Request{
		Name:     req.Name,
		Email:    req.Email,
		Message:  req.Message,
		Honeypot: req.Website,
	})
	if err != nil {
		if errors.Is(err, contactsvc.ErrRateLimited) {
			log.Error("contact rate limit exceeded")
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("too many requests, try again later"))
			return
		}
		log.Error("failed to submit contact message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send message"))
		return
	}

	log.Info("contact message accepted")
	render.JSON(w, r, response.OK())
}

// clientIP возвращает IP отправителя: первый адрес X-Forwarded-For
// за балансировщиком, иначе адрес соединения.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
