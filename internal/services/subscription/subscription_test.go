package subscription_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pleytv/iptv-backend/internal/models"
	"github.com/pleytv/iptv-backend/internal/services/subscription"
)

// Мок для Repository. Транзакционные сценарии (продление, активация по
// платежу) проверяются интеграционными тестами хранилища.
type SubscriptionRepoMock struct {
	mock.Mock
}

func (m *SubscriptionRepoMock) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) GetCurrentSubscription(ctx context.Context, userID int64, now time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SubscriptionRepoMock) UpdateSubscription(ctx context.Context, id int64, sub models.Subscription) error {
	args := m.Called(ctx, id, sub)
	return args.Error(0)
}

func (m *SubscriptionRepoMock) DeleteSubscription(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SubscriptionRepoMock) BeginTx(ctx context.Context) (*sql.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sql.Tx), args.Error(1)
}

func (m *SubscriptionRepoMock) GetSubscriptionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Subscription, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) SetSubscriptionEnd(ctx context.Context, tx *sql.Tx, id int64, end time.Time, status string) error {
	args := m.Called(ctx, tx, id, end, status)
	return args.Error(0)
}

func (m *SubscriptionRepoMock) SetSubscriptionAutoRenew(ctx context.Context, tx *sql.Tx, id int64, autoRenew bool) error {
	args := m.Called(ctx, tx, id, autoRenew)
	return args.Error(0)
}

func (m *SubscriptionRepoMock) LockUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

func (m *SubscriptionRepoMock) HasActiveSubscriptionTx(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriptionRepoMock) CreateSubscriptionTx(ctx context.Context, tx *sql.Tx, sub models.Subscription) (int64, error) {
	args := m.Called(ctx, tx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo *SubscriptionRepoMock) *subscription.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return subscription.New(repo, log)
}

func TestCaller_IsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"  Admin ", true},
		{"ADMIN", true},
		{"client", false},
		{"cliente", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			caller := subscription.Caller{UserID: 1, Role: tt.role}
			assert.Equal(t, tt.want, caller.IsAdmin())
		})
	}
}

func TestSubscriptionService_Create_Defaults(t *testing.T) {
	repo := new(SubscriptionRepoMock)
	repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.Status == models.SubscriptionActive && !sub.StartDate.IsZero()
	})).Return(int64(4), nil).Once()

	svc := newTestService(repo)
	id, err := svc.Create(context.Background(), models.Subscription{UserID: 5})

	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	repo.AssertExpectations(t)
}

func TestSubscriptionService_Create_KeepsExplicitValues(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	repo := new(SubscriptionRepoMock)
	repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.Status == models.SubscriptionExpired && sub.StartDate.Equal(start)
	})).Return(int64(4), nil).Once()

	svc := newTestService(repo)
	_, err := svc.Create(context.Background(), models.Subscription{
		UserID:    5,
		StartDate: start,
		Status:    models.SubscriptionExpired,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSubscriptionService_Current_NoSubscription(t *testing.T) {
	repo := new(SubscriptionRepoMock)
	repo.On("GetCurrentSubscription", mock.Anything, int64(5), mock.Anything).
		Return(nil, nil).Once()

	svc := newTestService(repo)
	sub, err := svc.Current(context.Background(), 5)

	require.NoError(t, err)
	assert.Nil(t, sub)
	repo.AssertExpectations(t)
}
