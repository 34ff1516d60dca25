package repository

import (
	"context"
	"fmt"

	"github.com/cliplens/cliplens-backend/internal/models"
)

// GetPlan возвращает тариф по имени.
func (s *Storage) GetPlan(ctx context.Context, name string) (*models.Plan, error) {
	const op = "storage.GetPlan"

	var p models.Plan
	err := s.DB.QueryRowContext(ctx,
		`SELECT name, monthly_price, yearly_price, quota_total FROM plans WHERE name = $1`,
		name).Scan(&p.Name, &p.MonthlyPrice, &p.YearlyPrice, &p.QuotaTotal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// CreateOrder вставляет новый заказ в статусе pending и возвращает его ID.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (int, error) {
	const op = "storage.CreateOrder"

	query := `INSERT INTO orders (reference, user_uid, plan, period, amount, currency, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		order.Reference, order.UserUID, order.Plan, order.Period,
		order.Amount, order.Currency, string(models.OrderPending)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetOrderByReference возвращает заказ по ссылке, по которой шлюз
// сопоставляет уведомления с заказом.
func (s *Storage) GetOrderByReference(ctx context.Context, ref string) (*models.Order, error) {
	const op = "storage.GetOrderByReference"

	query := `SELECT id, reference, user_uid, plan, period, amount, currency, status,
			      COALESCE(gateway_response, '{}'), created_at, updated_at
			  FROM orders WHERE reference = $1`
	row := s.DB.QueryRowContext(ctx, query, ref)

	var o models.Order
	var status string
	if err := row.Scan(&o.ID, &o.Reference, &o.UserUID, &o.Plan, &o.Period,
		&o.Amount, &o.Currency, &status, &o.GatewayResponse,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

// MarkOrderProcessing сохраняет сырой ответ шлюза и переводит заказ
// из pending в processing.
func (s *Storage) MarkOrderProcessing(ctx context.Context, ref string, gatewayResponse []byte) error {
	const op = "storage.MarkOrderProcessing"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, gateway_response = $2, updated_at = now()
		 WHERE reference = $3`,
		string(models.OrderProcessing), gatewayResponse, ref)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkOrderFailed переводит заказ в статус failed.
func (s *Storage) MarkOrderFailed(ctx context.Context, ref string) error {
	const op = "storage.MarkOrderFailed"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE reference = $2`,
		string(models.OrderFailed), ref)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
