package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pleytv/iptv-backend/internal/models"
)

// ListSubscriptions возвращает все подписки с именами владельцев.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sub.id, sub.user_id, sub.start_date, sub.end_date, sub.status,
			      sub.auto_renew, u.name
			  FROM subscriptions sub
			  LEFT JOIN users u ON sub.user_id = u.id
			  ORDER BY sub.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		var endDate sql.NullTime
		var userName sql.NullString
		if err = rows.Scan(&sub.ID, &sub.UserID, &sub.StartDate, &endDate,
			&sub.Status, &sub.AutoRenew, &userName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endDate.Valid {
			sub.EndDate = &endDate.Time
		}
		sub.UserName = userName.String
		result = append(result, &sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetSubscription возвращает подписку по ID с именем владельца.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sub.id, sub.user_id, sub.start_date, sub.end_date, sub.status,
			      sub.auto_renew, u.name
			  FROM subscriptions sub
			  LEFT JOIN users u ON sub.user_id = u.id
			  WHERE sub.id = $1`
	var sub models.Subscription
	var endDate sql.NullTime
	var userName sql.NullString
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.UserID,
		&sub.StartDate, &endDate, &sub.Status, &sub.AutoRenew, &userName); err != nil {
		return nil, wrapNotFound(op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	sub.UserName = userName.String
	return &sub, nil
}

// GetCurrentSubscription возвращает действующую подписку пользователя:
// статус active и дата окончания в будущем либо отсутствует. При нескольких
// выбирается с самой поздней датой окончания. Отсутствие — не ошибка.
func (s *Storage) GetCurrentSubscription(ctx context.Context, userID int64, now time.Time) (*models.Subscription, error) {
	const op = "storage.GetCurrentSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, start_date, end_date, status, auto_renew
			  FROM subscriptions
			  WHERE user_id = $1 AND status = $2
			    AND (end_date IS NULL OR end_date > $3)
			  ORDER BY end_date DESC NULLS FIRST
			  LIMIT 1`
	var sub models.Subscription
	var endDate sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userID, models.SubscriptionActive, now).
		Scan(&sub.ID, &sub.UserID, &sub.StartDate, &endDate, &sub.Status, &sub.AutoRenew)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return &sub, nil
}

// CreateSubscription добавляет подписку и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO subscriptions (user_id, start_date, end_date, status, auto_renew)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, sub.UserID, sub.StartDate,
		sub.EndDate, sub.Status, sub.AutoRenew).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateSubscription обновляет подписку по ID.
func (s *Storage) UpdateSubscription(ctx context.Context, id int64, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET user_id = $1, start_date = $2, end_date = $3, status = $4, auto_renew = $5
			  WHERE id = $6`
	res, err := s.DB.ExecContext(ctx, query, sub.UserID, sub.StartDate,
		sub.EndDate, sub.Status, sub.AutoRenew, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// DeleteSubscription удаляет подписку по ID.
func (s *Storage) DeleteSubscription(ctx context.Context, id int64) error {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// --- Транзакционные методы. Продление и создание подписки по платежу
// выполняются в транзакции с блокировкой строки, чтобы конкурентные
// вызовы для одного пользователя сериализовались.

// BeginTx начинает транзакцию хранилища.
func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	const op = "storage.BeginTx"
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tx, nil
}

// GetSubscriptionForUpdate читает подписку внутри транзакции с блокировкой строки.
func (s *Storage) GetSubscriptionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionForUpdate"

	query := `SELECT id, user_id, start_date, end_date, status, auto_renew
			  FROM subscriptions
			  WHERE id = $1
			  FOR UPDATE`
	var sub models.Subscription
	var endDate sql.NullTime
	if err := tx.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.UserID,
		&sub.StartDate, &endDate, &sub.Status, &sub.AutoRenew); err != nil {
		return nil, wrapNotFound(op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return &sub, nil
}

// SetSubscriptionEnd выставляет новую дату окончания и статус внутри транзакции.
func (s *Storage) SetSubscriptionEnd(ctx context.Context, tx *sql.Tx, id int64, end time.Time, status string) error {
	const op = "storage.SetSubscriptionEnd"

	query := `UPDATE subscriptions SET end_date = $1, status = $2 WHERE id = $3`
	res, err := tx.ExecContext(ctx, query, end, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// SetSubscriptionAutoRenew переключает флаг автопродления внутри транзакции.
func (s *Storage) SetSubscriptionAutoRenew(ctx context.Context, tx *sql.Tx, id int64, autoRenew bool) error {
	const op = "storage.SetSubscriptionAutoRenew"

	query := `UPDATE subscriptions SET auto_renew = $1 WHERE id = $2`
	res, err := tx.ExecContext(ctx, query, autoRenew, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// LockUser блокирует строку пользователя до конца транзакции: точка
// сериализации для проверки «нет активной подписки — создать».
func (s *Storage) LockUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	const op = "storage.LockUser"

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id); err != nil {
		return wrapNotFound(op, err)
	}
	return nil
}

// HasActiveSubscriptionTx проверяет наличие действующей подписки внутри транзакции.
func (s *Storage) HasActiveSubscriptionTx(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (bool, error) {
	const op = "storage.HasActiveSubscriptionTx"

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM subscriptions
			      WHERE user_id = $1 AND status = $2
			        AND (end_date IS NULL OR end_date > $3)
			  )`
	if err := tx.QueryRowContext(ctx, query, userID, models.SubscriptionActive, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateSubscriptionTx добавляет подписку внутри транзакции.
func (s *Storage) CreateSubscriptionTx(ctx context.Context, tx *sql.Tx, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscriptionTx"

	var newID int64
	query := `INSERT INTO subscriptions (user_id, start_date, end_date, status, auto_renew)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	if err := tx.QueryRowContext(ctx, query, sub.UserID, sub.StartDate,
		sub.EndDate, sub.Status, sub.AutoRenew).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
