// Package payment содержит бизнес-логику платежей. Переход платежа в статус
// completed активирует подписку и публикует событие в RabbitMQ.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pleytv/iptv-backend/internal/lib/rabbitmq"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Repository определяет методы для работы с платежами в хранилище.
type Repository interface {
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	CreatePayment(ctx context.Context, p models.Payment) (int64, error)
	UpdatePayment(ctx context.Context, id int64, p models.Payment) error
	DeletePayment(ctx context.Context, id int64) error
}

// Activator создает подписку по завершённому платежу.
type Activator interface {
	ActivateFromPayment(ctx context.Context, userID int64, paidAt time.Time) (int64, bool, error)
}

// Publisher публикует доменные события.
type Publisher interface {
	PublishMessage(ctx context.Context, routingKey string, event any) error
}

// Service реализует бизнес-логику платежей.
type Service struct {
	repo      Repository
	activator Activator
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. publisher может быть nil, тогда
// события не публикуются.
func New(repo Repository, activator Activator, publisher Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, activator: activator, publisher: publisher, log: log}
}

// NormalizeStatus приводит статус платежа к каноническому виду:
// испанские варианты считаются синонимами английских.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.PaymentCompleted, "completado":
		return models.PaymentCompleted
	case models.PaymentFailed, "fallido":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}

// List возвращает все платежи с именами плательщиков.
func (s *Service) List(ctx context.Context) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx)
}

// Read возвращает платёж по ID.
func (s *Service) Read(ctx context.Context, id int64) (*models.Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

// Create добавляет платёж. Если он сразу создаётся завершённым,
// активация подписки выполняется так же, как при обновлении.
func (s *Service) Create(ctx context.Context, p models.Payment) (int64, error) {
	const op = "services.payment.Create"

	p.Status = NormalizeStatus(p.Status)
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}

	id, err := s.repo.CreatePayment(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	p.ID = id

	if p.Status == models.PaymentCompleted {
		s.onCompleted(ctx, p)
	}
	return id, nil
}

// Update обновляет платёж. Переход в completed создаёт подписку,
// если у пользователя нет действующей.
func (s *Service) Update(ctx context.Context, id int64, p models.Payment) error {
	const op = "services.payment.Update"

	prev, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.Status = NormalizeStatus(p.Status)
	if p.PaidAt.IsZero() {
		p.PaidAt = prev.PaidAt
	}
	if err = s.repo.UpdatePayment(ctx, id, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if p.Status == models.PaymentCompleted && prev.Status != models.PaymentCompleted {
		p.ID = id
		s.onCompleted(ctx, p)
	}
	return nil
}

// Remove удаляет платёж по ID.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.DeletePayment(ctx, id)
}

// onCompleted выполняет побочные эффекты завершённого платежа: активацию
// подписки и публикацию события. Ошибка публикации не прерывает операцию.
func (s *Service) onCompleted(ctx context.Context, p models.Payment) {
	subID, created, err := s.activator.ActivateFromPayment(ctx, p.UserID, p.PaidAt)
	if err != nil {
		s.log.Error("failed to activate subscription from payment",
			slog.Int64("payment_id", p.ID), sl.Err(err))
		return
	}
	if created {
		s.log.Info("subscription created from payment",
			slog.Int64("payment_id", p.ID),
			slog.Int64("subscription_id", subID))
	}

	if s.publisher == nil {
		return
	}
	event := rabbitmq.PaymentCompletedEvent{
		PaymentID:      p.ID,
		UserID:         p.UserID,
		Amount:         p.Amount,
		SubscriptionID: subID,
		OccurredAt:     time.Now(),
	}
	if err := s.publisher.PublishMessage(ctx, rabbitmq.PaymentCompletedKey, event); err != nil {
		s.log.Warn("failed to publish payment event",
			slog.Int64("payment_id", p.ID), sl.Err(err))
	}
}
