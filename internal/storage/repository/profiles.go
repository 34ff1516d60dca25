package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cliplens/cliplens-backend/internal/models"
)

// GetProfile возвращает профиль пользователя по его идентификатору.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"

	query := `SELECT user_uid, email, role, plan, subscription_status, locale, updated_at
			  FROM profiles WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var p models.Profile
	if err := row.Scan(&p.UserUID, &p.Email, &p.Role, &p.Plan,
		&p.SubscriptionStatus, &p.Locale, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// GetRole возвращает роль пользователя из таблицы profiles.
func (s *Storage) GetRole(ctx context.Context, userUID string) (string, error) {
	const op = "storage.GetRole"

	var role string
	err := s.DB.QueryRowContext(ctx,
		`SELECT role FROM profiles WHERE user_uid = $1`, userUID).Scan(&role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return role, nil
}

// ListProfilesForAudience возвращает профили, подпадающие под аудиторию
// объявления: "all" — все профили, иначе профили указанного тарифа.
func (s *Storage) ListProfilesForAudience(ctx context.Context, audience string) ([]*models.Profile, error) {
	const op = "storage.ListProfilesForAudience"

	query := `SELECT user_uid, email, role, plan, subscription_status, locale, updated_at
			  FROM profiles
			  WHERE $1 = 'all' OR plan = $1
			  ORDER BY user_uid`
	rows, err := s.DB.QueryContext(ctx, query, audience)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserUID, &p.Email, &p.Role, &p.Plan,
			&p.SubscriptionStatus, &p.Locale, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// mirrorProfile зеркалирует тариф и статус подписки в строку профиля.
// Вызывается только внутри транзакций, меняющих подписку.
func mirrorProfile(ctx context.Context, tx *sql.Tx, userUID, plan string, status models.SubscriptionStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE profiles SET plan = $1, subscription_status = $2, updated_at = now()
		 WHERE user_uid = $3`,
		plan, string(status), userUID)
	return err
}
