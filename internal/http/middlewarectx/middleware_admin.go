package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/cliplens/cliplens-backend/internal/http/response"
	"github.com/cliplens/cliplens-backend/internal/lib/sl"
	"github.com/cliplens/cliplens-backend/internal/models"
)

// RoleProvider описывает интерфейс для получения роли пользователя.
type RoleProvider interface {
	GetRole(ctx context.Context, userUID string) (string, error)
}

// AdminMiddleware пропускает запрос дальше только для пользователей с ролью admin.
// Должен стоять после AuthMiddleware.
func AdminMiddleware(roles RoleProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "auth.AdminMiddleware"

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			role, err := roles.GetRole(r.Context(), userUID)
			if err != nil {
				log.Error("failed to get user role", slog.String("op", op), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			if role != models.RoleAdmin {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin role required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
