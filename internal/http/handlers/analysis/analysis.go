// Package analysis реализует HTTP-обработчик анализа содержимого.
//
// Handler пересылает части запроса генеративному API без изменений
// и возвращает его JSON-ответ. 403 апстрима пробрасывается как 403
// с сообщением апстрима, остальные ошибки апстрима — как 500.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cliplens/cliplens-backend/internal/aiclient"
	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	analysissvc "github.com/cliplens/cliplens-backend/internal/services/analysis"
)

// Service описывает интерфейс сервиса анализа.
type Service interface {
	Analyze(ctx context.Context, systemInstruction string, parts []aiclient.Part) (json.RawMessage, error)
}

// Handler управляет HTTP-запросами анализа содержимого.
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

// Request — тело запроса анализа: системная инструкция и части содержимого.
type Request struct {
	SystemInstruction string          `json:"system_instruction"`
	Parts             []aiclient.Part `json:"parts"`
}

// ServeHTTP godoc
// @Summary Проанализировать содержимое
// @Description Пересылает части запроса генеративному API и возвращает его JSON-ответ.
// @Tags Analysis
// @Accept  json
// @Produce  json
// @Param request body Request true "Инструкция и части содержимого"
// @Success 200 {object} map[string]any "JSON-ответ модели"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустой запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Доступ к модели запрещён"
// @Failure 500 {object} response.ErrorResponse "Ошибка апстрима или неразборный ответ"
// @Router /analysis [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis"
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
	if len(req.Parts) == 0 {
		log.Error("request has no content parts")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("parts are required"))
		return
	}

	result, err := h.service.Analyze(r.Context(), req.SystemInstruction, req.Parts)
	if err != nil {
		var apiErr *aiclient.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden:
			log.Error("upstream forbidden", slog.String("message", apiErr.Message))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(apiErr.Message))
		case errors.As(err, &apiErr):
			log.Error("upstream error",
				slog.Int("status", apiErr.StatusCode),
				slog.String("message", apiErr.Message))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(apiErr.Message))
		case errors.Is(err, analysissvc.ErrNotJSON):
			log.Error("model returned non-json text")
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("model response is not valid json"))
		default:
			log.Error("analysis failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not analyze content"))
		}
		return
	}

	log.Info("analysis completed")
	render.JSON(w, r, response.OKWithData(result))
}
