// Package send реализует HTTP-обработчик рассылки объявлений.
//
// Handler принимает заголовок, текст и аудиторию объявления, валидирует их
// и запускает рассылку: запись в хранилище, веер доставки и постановку
// почтовых уведомлений в очередь.
package send

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/models"
)

// Service описывает интерфейс сервиса рассылки объявлений.
type Service interface {
	Send(ctx context.Context, ann models.Announcement) (int, int, error)
}

// Handler управляет HTTP-запросами рассылки объявлений.
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

// Request — тело запроса рассылки объявления. Audience — "all" либо имя тарифа.
type Request struct {
	Title    string `json:"title" validate:"required,min=3"`
	Body     string `json:"body" validate:"required,min=3"`
	Audience string `json:"audience" validate:"required"`
}

// ServeHTTP godoc
// @Summary Разослать объявление
// @Description Создает объявление и рассылает его пользователям указанной аудитории.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Объявление"
// @Success 200 {object} map[string]any "ID объявления и число получателей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/announcements [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.announcement.send"
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

	id, recipients, err := h.service.Send(r.Context(), models.Announcement{
		Title:    req.Title,
		Body:     req.Body,
		Audience: req.Audience,
	})
	if err != nil {
		log.Error("failed to send announcement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send announcement"))
		return
	}

	log.Info("announcement sent", slog.Int("announcement_id", id), slog.Int("recipients", recipients))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"announcement_id": id,
		"recipients":      recipients,
	}))
}
