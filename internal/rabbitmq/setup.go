package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange — единая точка публикации почтовых уведомлений.
const Exchange = "notifications"

// Очереди и ключи маршрутизации почтовых уведомлений.
const (
	AnnouncementQueue      = "announcement_emails_queue"
	AnnouncementRoutingKey = "announcement"
	ExpiredQueue           = "subscription_expired_queue"
	ExpiredRoutingKey      = "expired"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает конфигурацию всех почтовых очередей.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: AnnouncementQueue, RoutingKey: AnnouncementRoutingKey},
		{QueueName: ExpiredQueue, RoutingKey: ExpiredRoutingKey},
	}
}

// SetupChannel открывает канал, объявляет exchange и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			Exchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
