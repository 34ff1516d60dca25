package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DeleteCoupon удаляет купон по ID вместе с его погашениями — одной транзакцией.
func (s *Storage) DeleteCoupon(ctx context.Context, id int) (int64, error) {
	const op = "storage.DeleteCoupon"

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM coupon_redemptions WHERE coupon_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
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

// DeleteCouponsBulk удаляет купоны по списку ID вместе с погашениями.
func (s *Storage) DeleteCouponsBulk(ctx context.Context, ids []int) (int64, error) {
	const op = "storage.DeleteCouponsBulk"

	ph := placeholders(len(ids))
	args := idsToArgs(ids)

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM coupon_redemptions WHERE coupon_id IN (`+ph+`)`, args...); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM coupons WHERE id IN (`+ph+`)`, args...)
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

// PurgeTrials безусловно очищает таблицу пробных периодов.
func (s *Storage) PurgeTrials(ctx context.Context) (int64, error) {
	const op = "storage.PurgeTrials"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM trials`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}
