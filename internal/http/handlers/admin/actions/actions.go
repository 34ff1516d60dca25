// Package actions реализует HTTP-обработчик административных действий
// модерации: удаление объявлений, купонов и пробных периодов.
//
// Handler принимает JSON-запрос с тегом действия и идентификаторами,
// сопоставляет тег с типизированной операцией диспетчера и возвращает
// число удалённых строк. Неизвестный тег и пустой список идентификаторов
// отклоняются до какой-либо мутации хранилища.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/services/admin"
)

// Service описывает интерфейс диспетчера административных действий.
type Service interface {
	Execute(ctx context.Context, req admin.Request) (int64, error)
}

// Handler управляет HTTP-запросами административных действий.
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

// Request — тело запроса административного действия.
type Request struct {
	Action string `json:"action"`
	ID     int    `json:"id,omitempty"`
	IDs    []int  `json:"ids,omitempty"`
}

// ServeHTTP godoc
// @Summary Выполнить административное действие
// @Description Выполняет одно из типизированных действий модерации: удаление объявления, купона, пробных периодов. Возвращает число удалённых строк.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Действие и идентификаторы"
// @Success 200 {object} map[string]any "Число удалённых строк"
// @Failure 400 {object} response.ErrorResponse "Неизвестное действие или пустой список идентификаторов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/actions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.actions"
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

	affected, err := h.service.Execute(r.Context(), admin.Request{
		Action: admin.Action(req.Action),
		ID:     req.ID,
		IDs:    req.IDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrUnknownAction):
			log.Error("unknown action", slog.String("action", req.Action))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown action"))
		case errors.Is(err, admin.ErrEmptyIDs):
			log.Error("empty ids list", slog.String("action", req.Action))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("ids list is empty"))
		default:
			log.Error("failed to execute action", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not execute action"))
		}
		return
	}

	log.Info("action executed", slog.String("action", req.Action), slog.Int64("affected", affected))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"affected": affected,
	}))
}
