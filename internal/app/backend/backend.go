// Package backend собирает HTTP-сервис ClipLens: хранилище, кэш, очередь,
// внешние клиенты и маршруты.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/cliplens/cliplens-backend/internal/aiclient"
	"github.com/cliplens/cliplens-backend/internal/cache"
	"github.com/cliplens/cliplens-backend/internal/config"
	"github.com/cliplens/cliplens-backend/internal/emailapi"
	"github.com/cliplens/cliplens-backend/internal/identity"
	"github.com/cliplens/cliplens-backend/internal/migrations"
	"github.com/cliplens/cliplens-backend/internal/paymentgateway"
	"github.com/cliplens/cliplens-backend/internal/rabbitmq"
	adminservice "github.com/cliplens/cliplens-backend/internal/services/admin"
	analysisservice "github.com/cliplens/cliplens-backend/internal/services/analysis"
	announcementservice "github.com/cliplens/cliplens-backend/internal/services/announcement"
	authemailservice "github.com/cliplens/cliplens-backend/internal/services/authemail"
	contactservice "github.com/cliplens/cliplens-backend/internal/services/contact"
	paymentservice "github.com/cliplens/cliplens-backend/internal/services/payment"
	sweepservice "github.com/cliplens/cliplens-backend/internal/services/sweep"
	"github.com/cliplens/cliplens-backend/internal/storage/repository"
)

// App — собранный HTTP-сервис со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New инициализирует зависимости и собирает сервис.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := &rabbitmq.ChannelPublisher{Ch: ch}

	gatewayClient := paymentgateway.NewClient(cfg.GatewayKey, cfg.GatewaySecret, cfg.GatewayURL)
	emailClient := emailapi.NewClient(cfg.EmailAPIKey, cfg.EmailAPIURL, cfg.EmailFrom)
	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.ServiceKey, cfg.SiteURL)
	aiClient := aiclient.NewClient(cfg.AIKey, cfg.AIModel, "")

	services := &Services{
		Payment: paymentservice.New(db, gatewayClient, cacheRedis, paymentservice.URLs{
			Callback: cfg.CallbackURL,
			IPN:      cfg.IPNURL,
		}, logger),
		Sweep:        sweepservice.New(db, publisher, logger),
		Admin:        adminservice.New(db, logger),
		Contact:      contactservice.New(cacheRedis, emailClient, cfg.ContactInbox, logger),
		Analysis:     analysisservice.New(aiClient, logger),
		Announcement: announcementservice.New(db, publisher, logger),
		AuthEmail:    authemailservice.New(identityClient, emailClient, logger),
		Roles:        db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.ch.Close()
		a.conn.Close()
		a.db.DB.Close()
		return err
	}
}
