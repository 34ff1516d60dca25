package backend

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/cliplens/cliplens-backend/internal/config"
	adminactions "github.com/cliplens/cliplens-backend/internal/http/handlers/admin/actions"
	analysishandler "github.com/cliplens/cliplens-backend/internal/http/handlers/analysis"
	announcementsend "github.com/cliplens/cliplens-backend/internal/http/handlers/announcement/send"
	authemailhandler "github.com/cliplens/cliplens-backend/internal/http/handlers/authemail"
	contacthandler "github.com/cliplens/cliplens-backend/internal/http/handlers/contact"
	"github.com/cliplens/cliplens-backend/internal/http/handlers/health"
	paymentcallback "github.com/cliplens/cliplens-backend/internal/http/handlers/payment/callback"
	paymentinitiate "github.com/cliplens/cliplens-backend/internal/http/handlers/payment/initiate"
	paymentipn "github.com/cliplens/cliplens-backend/internal/http/handlers/payment/ipn"
	subscriptioncancel "github.com/cliplens/cliplens-backend/internal/http/handlers/subscription/cancel"
	subscriptionresume "github.com/cliplens/cliplens-backend/internal/http/handlers/subscription/resume"
	subscriptionsweep "github.com/cliplens/cliplens-backend/internal/http/handlers/subscription/sweep"
	"github.com/cliplens/cliplens-backend/internal/http/middlewarectx"
	adminservice "github.com/cliplens/cliplens-backend/internal/services/admin"
	analysisservice "github.com/cliplens/cliplens-backend/internal/services/analysis"
	announcementservice "github.com/cliplens/cliplens-backend/internal/services/announcement"
	authemailservice "github.com/cliplens/cliplens-backend/internal/services/authemail"
	contactservice "github.com/cliplens/cliplens-backend/internal/services/contact"
	paymentservice "github.com/cliplens/cliplens-backend/internal/services/payment"
	sweepservice "github.com/cliplens/cliplens-backend/internal/services/sweep"
)

// Services — сервисы, которыми оперируют обработчики.
type Services struct {
	Payment      *paymentservice.Service
	Sweep        *sweepservice.Service
	Admin        *adminservice.Service
	Contact      *contactservice.Service
	Analysis     *analysisservice.Service
	Announcement *announcementservice.Service
	AuthEmail    *authemailservice.Service
	Roles        middlewarectx.RoleProvider
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/contact", contacthandler.New(logger, s.Contact).ServeHTTP)

		// Вызовы платёжного шлюза и провайдера идентификации: аутентификация
		// подписью либо общим секретом внутри обработчика
		r.Get("/payments/callback", paymentcallback.New(logger, s.Payment, cfg.GatewaySecret, cfg.ResultURL).ServeHTTP)
		r.Post("/payments/ipn", paymentipn.New(logger, s.Payment, cfg.GatewaySecret).ServeHTTP)
		r.Post("/hooks/auth-email", authemailhandler.New(logger, s.AuthEmail, cfg.HookSecret).ServeHTTP)
		r.Post("/internal/subscriptions/sweep", subscriptionsweep.New(logger, s.Sweep, cfg.CronSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(cfg.JWTSecret, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/payments/initiate", paymentinitiate.New(logger, s.Payment).ServeHTTP)
			r.Post("/subscriptions/cancel", subscriptioncancel.New(logger, s.Payment).ServeHTTP)
			r.Post("/subscriptions/resume", subscriptionresume.New(logger, s.Payment).ServeHTTP)
			r.Post("/analysis", analysishandler.New(logger, s.Analysis).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(s.Roles, logger))
				r.Post("/admin/actions", adminactions.New(logger, s.Admin).ServeHTTP)
				r.Post("/admin/announcements", announcementsend.New(logger, s.Announcement).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
