package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cliplens/cliplens-backend/internal/models"
)

// insertEvent пишет строку журнала переходов состояния подписки.
// Вызывается внутри транзакций, меняющих подписку.
func insertEvent(ctx context.Context, tx *sql.Tx, userUID string, subscriptionID int, eventType, detail string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO subscription_events (user_uid, subscription_id, event_type, detail)
		 VALUES ($1, $2, $3, $4)`,
		userUID, subscriptionID, eventType, detail)
	return err
}

// ListEvents возвращает последние события подписок пользователя.
func (s *Storage) ListEvents(ctx context.Context, userUID string, limit int) ([]*models.SubscriptionEvent, error) {
	const op = "storage.ListEvents"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_uid, subscription_id, event_type, detail, created_at
		 FROM subscription_events
		 WHERE user_uid = $1
		 ORDER BY id DESC
		 LIMIT $2`, userUID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.SubscriptionEvent
	for rows.Next() {
		var e models.SubscriptionEvent
		if err := rows.Scan(&e.ID, &e.UserUID, &e.SubscriptionID,
			&e.EventType, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
