// Package subscription содержит бизнес-логику для управления подписками:
// определение действующей подписки, продление и активация по платежу.
package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/lib/month"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	ListSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	GetCurrentSubscription(ctx context.Context, userID int64, now time.Time) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	UpdateSubscription(ctx context.Context, id int64, sub models.Subscription) error
	DeleteSubscription(ctx context.Context, id int64) error

	BeginTx(ctx context.Context) (*sql.Tx, error)
	GetSubscriptionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Subscription, error)
	SetSubscriptionEnd(ctx context.Context, tx *sql.Tx, id int64, end time.Time, status string) error
	SetSubscriptionAutoRenew(ctx context.Context, tx *sql.Tx, id int64, autoRenew bool) error
	LockUser(ctx context.Context, tx *sql.Tx, userID int64) error
	HasActiveSubscriptionTx(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (bool, error)
	CreateSubscriptionTx(ctx context.Context, tx *sql.Tx, sub models.Subscription) (int64, error)
}

// Caller описывает инициатора операции для проверки прав.
type Caller struct {
	UserID int64
	Role   string
}

// IsAdmin сообщает, имеет ли инициатор административную роль.
func (c Caller) IsAdmin() bool {
	return strings.ToLower(strings.TrimSpace(c.Role)) == models.RoleAdmin
}

// Service реализует бизнес-логику работы с подписками.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает все подписки с именами владельцев.
func (s *Service) List(ctx context.Context) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptions(ctx)
}

// Read возвращает подписку по ID.
func (s *Service) Read(ctx context.Context, id int64) (*models.Subscription, error) {
	return s.repo.GetSubscription(ctx, id)
}

// Current возвращает действующую подписку пользователя или nil, если её нет.
func (s *Service) Current(ctx context.Context, userID int64) (*models.Subscription, error) {
	return s.repo.GetCurrentSubscription(ctx, userID, time.Now())
}

// Create добавляет подписку и возвращает её ID.
func (s *Service) Create(ctx context.Context, sub models.Subscription) (int64, error) {
	if sub.Status == "" {
		sub.Status = models.SubscriptionActive
	}
	if sub.StartDate.IsZero() {
		sub.StartDate = time.Now()
	}
	return s.repo.CreateSubscription(ctx, sub)
}

// Update обновляет подписку по ID.
func (s *Service) Update(ctx context.Context, id int64, sub models.Subscription) error {
	return s.repo.UpdateSubscription(ctx, id, sub)
}

// Remove удаляет подписку по ID.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.DeleteSubscription(ctx, id)
}

// Renew продлевает подписку на один календарный месяц. Разрешено владельцу
// или администратору. Строка подписки блокируется на время транзакции,
// поэтому конкурентные продления одной подписки выполняются по очереди
// и каждое сдвигает дату окончания ровно на месяц.
func (s *Service) Renew(ctx context.Context, id int64, caller Caller) (*models.Subscription, error) {
	const op = "services.subscription.Renew"

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	sub, err := s.repo.GetSubscriptionForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}

	newEnd := month.NextRenewalEnd(sub.EndDate, time.Now())
	if err = s.repo.SetSubscriptionEnd(ctx, tx, id, newEnd, models.SubscriptionActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription renewed",
		slog.Int64("id", id),
		slog.Time("new_end", newEnd))

	sub.EndDate = &newEnd
	sub.Status = models.SubscriptionActive
	return sub, nil
}

// SetAutoRenew переключает флаг автопродления. Разрешено владельцу или
// администратору.
func (s *Service) SetAutoRenew(ctx context.Context, id int64, caller Caller, autoRenew bool) error {
	const op = "services.subscription.SetAutoRenew"

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	sub, err := s.repo.GetSubscriptionForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserID != caller.UserID && !caller.IsAdmin() {
		return fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}

	if err = s.repo.SetSubscriptionAutoRenew(ctx, tx, id, autoRenew); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivateFromPayment создает месячную подписку по завершённому платежу,
// если у пользователя нет действующей. Строка пользователя блокируется,
// чтобы проверка и создание выполнялись атомарно: два конкурентных платежа
// дают ровно одну подписку. Возвращает ID созданной подписки и признак
// того, что она была создана.
func (s *Service) ActivateFromPayment(ctx context.Context, userID int64, paidAt time.Time) (int64, bool, error) {
	const op = "services.subscription.ActivateFromPayment"

	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err = s.repo.LockUser(ctx, tx, userID); err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.repo.HasActiveSubscriptionTx(ctx, tx, userID, time.Now())
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		s.log.Info("active subscription already present, skipping activation",
			slog.Int64("user_id", userID))
		return 0, false, nil
	}

	end := month.AddMonth(paidAt)
	newID, err := s.repo.CreateSubscriptionTx(ctx, tx, models.Subscription{
		UserID:    userID,
		StartDate: paidAt,
		EndDate:   &end,
		Status:    models.SubscriptionActive,
		AutoRenew: false,
	})
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription activated from payment",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", newID))

	return newID, true, nil
}
