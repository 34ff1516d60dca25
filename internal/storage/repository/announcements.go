package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cliplens/cliplens-backend/internal/models"
)

// CreateAnnouncementWithFanout вставляет объявление и одной транзакцией
// разворачивает его в строки user_announcements по профилям аудитории,
// вычисленным на момент отправки. Возвращает ID объявления и получателей.
func (s *Storage) CreateAnnouncementWithFanout(ctx context.Context, ann models.Announcement) (int, []*models.Profile, error) {
	const op = "storage.CreateAnnouncementWithFanout"

	var annID int
	var recipients []*models.Profile
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO announcements (title, body, audience) VALUES ($1, $2, $3) RETURNING id`,
			ann.Title, ann.Body, ann.Audience).Scan(&annID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`INSERT INTO user_announcements (announcement_id, user_uid)
			 SELECT $1, user_uid FROM profiles WHERE $2 = 'all' OR plan = $2
			 RETURNING user_uid`,
			annID, ann.Audience)
		if err != nil {
			return err
		}
		var uids []string
		for rows.Next() {
			var uid string
			if err := rows.Scan(&uid); err != nil {
				rows.Close()
				return err
			}
			uids = append(uids, uid)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, uid := range uids {
			var p models.Profile
			if err := tx.QueryRowContext(ctx,
				`SELECT user_uid, email, locale FROM profiles WHERE user_uid = $1`,
				uid).Scan(&p.UserUID, &p.Email, &p.Locale); err != nil {
				return err
			}
			recipients = append(recipients, &p)
		}
		return nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	return annID, recipients, nil
}

// DeleteAnnouncement удаляет объявление по ID, предварительно удалив
// зависимые строки user_announcements — одной транзакцией.
func (s *Storage) DeleteAnnouncement(ctx context.Context, id int) (int64, error) {
	const op = "storage.DeleteAnnouncement"

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_announcements WHERE announcement_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}

// DeleteAnnouncementsBulk удаляет объявления по списку ID вместе
// с зависимыми строками user_announcements — одной транзакцией.
func (s *Storage) DeleteAnnouncementsBulk(ctx context.Context, ids []int) (int64, error) {
	const op = "storage.DeleteAnnouncementsBulk"

	ph := placeholders(len(ids))
	args := idsToArgs(ids)

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_announcements WHERE announcement_id IN (`+ph+`)`, args...); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM announcements WHERE id IN (`+ph+`)`, args...)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}

// DeleteUserAnnouncementsBulk удаляет строки доставки по списку ID.
func (s *Storage) DeleteUserAnnouncementsBulk(ctx context.Context, ids []int) (int64, error) {
	const op = "storage.DeleteUserAnnouncementsBulk"

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM user_announcements WHERE id IN (`+placeholders(len(ids))+`)`,
		idsToArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}
