// Package authemail реализует HTTP-хук провайдера идентификации для отправки
// писем регистрации и восстановления пароля.
//
// Хук вызывается провайдером по общему секрету в заголовке X-Hook-Secret,
// сравнение выполняется за постоянное время.
package authemail

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	authemailsvc "github.com/cliplens/cliplens-backend/internal/services/authemail"
)

// SecretHeader — заголовок с общим секретом хука.
const SecretHeader = "X-Hook-Secret"

// Service описывает интерфейс сервиса писем аутентификации.
type Service interface {
	Send(ctx context.Context, req authemailsvc.Request) error
}

// Handler управляет хуками отправки писем аутентификации.
type Handler struct {
	log        *slog.Logger
	service    Service
	hookSecret string
	validate   *validator.Validate
}

// New создает новый Handler с переданными логгером, сервисом и секретом хука.
func New(log *slog.Logger, service Service, hookSecret string) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		hookSecret: hookSecret,
		validate:   validator.New(),
	}
}

// Request — тело хука. ActionLink может отсутствовать: тогда ссылка
// запрашивается у провайдера идентификации.
type Request struct {
	Type       string `json:"type" validate:"required,oneof=signup recovery"`
	Email      string `json:"email" validate:"required,email"`
	Locale     string `json:"locale"`
	ActionLink string `json:"action_link"`
}

// ServeHTTP godoc
// @Summary Отправить письмо аутентификации
// @Description Отправляет письмо подтверждения регистрации или восстановления пароля по хуку провайдера.
// @Tags Hooks
// @Accept  json
// @Produce  json
// @Param X-Hook-Secret header string true "Общий секрет хука"
// @Param request body Request true "Тип письма, адресат и локаль"
// @Success 200 {object} response.Response "Письмо отправлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /hooks/auth-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.authemail"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	secret := r.Header.Get(SecretHeader)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.hookSecret)) != 1 {
		log.Error("invalid or missing hook secret")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	err := h.service.Send(r.Context(), authemailsvc.Request{
		Type:       req.Type,
		Email:      req.Email,
		Locale:     req.Locale,
		ActionLink: req.ActionLink,
	})
	if err != nil {
		if errors.Is(err, authemailsvc.ErrUnknownType) {
			log.Error("unknown email type", slog.String("type", req.Type))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown email type"))
			return
		}
		log.Error("failed to send auth email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send email"))
		return
	}

	log.Info("auth email sent", slog.String("type", req.Type))
	render.JSON(w, r, response.OK())
}
