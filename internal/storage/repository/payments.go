package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pleytv/iptv-backend/internal/models"
)

// ListPayments возвращает все платежи с именами плательщиков.
func (s *Storage) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.user_id, p.amount, p.method, p.paid_at, p.status, u.name
			  FROM payments p
			  LEFT JOIN users u ON p.user_id = u.id
			  ORDER BY p.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		var userName sql.NullString
		if err = rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.Method,
			&p.PaidAt, &p.Status, &userName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.UserName = userName.String
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPayment возвращает платёж по ID с именем плательщика.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.user_id, p.amount, p.method, p.paid_at, p.status, u.name
			  FROM payments p
			  LEFT JOIN users u ON p.user_id = u.id
			  WHERE p.id = $1`
	var p models.Payment
	var userName sql.NullString
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserID,
		&p.Amount, &p.Method, &p.PaidAt, &p.Status, &userName); err != nil {
		return nil, wrapNotFound(op, err)
	}
	p.UserName = userName.String
	return &p, nil
}

// CreatePayment сохраняет платёж и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (int64, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO payments (user_id, amount, method, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, p.UserID, p.Amount,
		p.Method, p.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdatePayment обновляет платёж по ID.
func (s *Storage) UpdatePayment(ctx context.Context, id int64, p models.Payment) error {
	const op = "storage.UpdatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET user_id = $1, amount = $2, method = $3, status = $4
			  WHERE id = $5`
	res, err := s.DB.ExecContext(ctx, query, p.UserID, p.Amount, p.Method, p.Status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// DeletePayment удаляет платёж по ID.
func (s *Storage) DeletePayment(ctx context.Context, id int64) error {
	const op = "storage.DeletePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}
