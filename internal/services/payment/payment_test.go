package payment_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pleytv/iptv-backend/internal/models"
	"github.com/pleytv/iptv-backend/internal/services/payment"
)

// Мок для Repository
type PaymentRepoMock struct {
	mock.Mock
}

func (m *PaymentRepoMock) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *PaymentRepoMock) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *PaymentRepoMock) CreatePayment(ctx context.Context, p models.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) UpdatePayment(ctx context.Context, id int64, p models.Payment) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *PaymentRepoMock) DeletePayment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок для Activator
type ActivatorMock struct {
	mock.Mock
}

func (m *ActivatorMock) ActivateFromPayment(ctx context.Context, userID int64, paidAt time.Time) (int64, bool, error) {
	args := m.Called(ctx, userID, paidAt)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

// Мок для Publisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishMessage(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"completed", models.PaymentCompleted},
		{"completado", models.PaymentCompleted},
		{" Completado ", models.PaymentCompleted},
		{"failed", models.PaymentFailed},
		{"fallido", models.PaymentFailed},
		{"pending", models.PaymentPending},
		{"", models.PaymentPending},
		{"unknown", models.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, payment.NormalizeStatus(tt.in))
		})
	}
}

func TestPaymentService_Create_CompletedActivatesSubscription(t *testing.T) {
	repo := new(PaymentRepoMock)
	activator := new(ActivatorMock)
	publisher := new(PublisherMock)

	paidAt := time.Now().Truncate(time.Second)
	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.Status == models.PaymentCompleted
	})).Return(int64(21), nil).Once()
	activator.On("ActivateFromPayment", mock.Anything, int64(5), paidAt).
		Return(int64(3), true, nil).Once()
	publisher.On("PublishMessage", mock.Anything, "payment.completed", mock.Anything).
		Return(nil).Once()

	svc := payment.New(repo, activator, publisher, newTestLogger())
	id, err := svc.Create(context.Background(), models.Payment{
		UserID: 5,
		Amount: 9.99,
		Method: models.MethodStripe,
		Status: "completado",
		PaidAt: paidAt,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(21), id)
	repo.AssertExpectations(t)
	activator.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPaymentService_Create_PendingDoesNotActivate(t *testing.T) {
	repo := new(PaymentRepoMock)
	activator := new(ActivatorMock)

	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.Status == models.PaymentPending
	})).Return(int64(22), nil).Once()

	svc := payment.New(repo, activator, nil, newTestLogger())
	_, err := svc.Create(context.Background(), models.Payment{
		UserID: 5,
		Amount: 9.99,
		Method: models.MethodPayPal,
	})

	require.NoError(t, err)
	activator.AssertNotCalled(t, "ActivateFromPayment", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestPaymentService_Update_TransitionToCompleted(t *testing.T) {
	paidAt := time.Now().Truncate(time.Second)

	tests := []struct {
		name         string
		prevStatus   string
		newStatus    string
		wantActivate bool
	}{
		{
			name:         "pending to completed activates",
			prevStatus:   models.PaymentPending,
			newStatus:    "completed",
			wantActivate: true,
		},
		{
			name:         "already completed does not activate again",
			prevStatus:   models.PaymentCompleted,
			newStatus:    "completed",
			wantActivate: false,
		},
		{
			name:         "pending to failed does not activate",
			prevStatus:   models.PaymentPending,
			newStatus:    "fallido",
			wantActivate: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(PaymentRepoMock)
			activator := new(ActivatorMock)

			repo.On("GetPayment", mock.Anything, int64(21)).
				Return(&models.Payment{ID: 21, UserID: 5, Status: tt.prevStatus, PaidAt: paidAt}, nil).Once()
			repo.On("UpdatePayment", mock.Anything, int64(21), mock.Anything).Return(nil).Once()
			if tt.wantActivate {
				activator.On("ActivateFromPayment", mock.Anything, int64(5), paidAt).
					Return(int64(3), true, nil).Once()
			}

			svc := payment.New(repo, activator, nil, newTestLogger())
			err := svc.Update(context.Background(), 21, models.Payment{
				UserID: 5,
				Amount: 9.99,
				Method: models.MethodStripe,
				Status: tt.newStatus,
			})

			require.NoError(t, err)
			repo.AssertExpectations(t)
			activator.AssertExpectations(t)
			if !tt.wantActivate {
				activator.AssertNotCalled(t, "ActivateFromPayment", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPaymentService_Update_PublishFailureDoesNotFail(t *testing.T) {
	repo := new(PaymentRepoMock)
	activator := new(ActivatorMock)
	publisher := new(PublisherMock)

	paidAt := time.Now().Truncate(time.Second)
	repo.On("GetPayment", mock.Anything, int64(21)).
		Return(&models.Payment{ID: 21, UserID: 5, Status: models.PaymentPending, PaidAt: paidAt}, nil).Once()
	repo.On("UpdatePayment", mock.Anything, int64(21), mock.Anything).Return(nil).Once()
	activator.On("ActivateFromPayment", mock.Anything, int64(5), paidAt).
		Return(int64(3), true, nil).Once()
	publisher.On("PublishMessage", mock.Anything, "payment.completed", mock.Anything).
		Return(assert.AnError).Once()

	svc := payment.New(repo, activator, publisher, newTestLogger())
	err := svc.Update(context.Background(), 21, models.Payment{
		UserID: 5,
		Amount: 9.99,
		Method: models.MethodStripe,
		Status: "completed",
	})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}
