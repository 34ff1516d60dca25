// Package sender собирает рабочий процесс рассылки: подключение к очереди
// и обработчики почтовых сообщений.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/cliplens/cliplens-backend/internal/config"
	"github.com/cliplens/cliplens-backend/internal/emailapi"
	"github.com/cliplens/cliplens-backend/internal/rabbitmq"
	senderservice "github.com/cliplens/cliplens-backend/internal/services/sender"
)

// App — собранный рабочий процесс рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New инициализирует зависимости и собирает рабочий процесс.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	emailClient := emailapi.NewClient(cfg.EmailAPIKey, cfg.EmailAPIURL, cfg.EmailFrom)
	senderService := senderservice.New(emailClient, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run подписывает обработчики на почтовые очереди и ждёт отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.AnnouncementQueue, a.senderService.HandleAnnouncement)
	if err != nil {
		a.logger.Error("failed to start announcement consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ExpiredQueue, a.senderService.HandleExpired)
	if err != nil {
		a.logger.Error("failed to start expiration consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("email worker shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
