package renew

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/models"
	"github.com/pleytv/iptv-backend/internal/services/subscription"
)

type RenewServiceMock struct {
	mock.Mock
}

func (m *RenewServiceMock) Renew(ctx context.Context, id int64, caller subscription.Caller) (*models.Subscription, error) {
	args := m.Called(ctx, id, caller)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRenewHandler_ServeHTTP(t *testing.T) {
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	renewed := &models.Subscription{
		ID:      3,
		UserID:  5,
		EndDate: &end,
		Status:  models.SubscriptionActive,
	}

	tests := []struct {
		name           string
		urlID          string
		identity       *middlewarectx.Identity
		mockErr        error
		mockSub        *models.Subscription
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "owner renews own subscription",
			urlID:          "3",
			identity:       &middlewarectx.Identity{UserID: 5, Role: models.RoleClient},
			mockSub:        renewed,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "foreign subscription is forbidden",
			urlID:          "3",
			identity:       &middlewarectx.Identity{UserID: 9, Role: models.RoleClient},
			mockErr:        errs.ErrForbidden,
			wantStatusCode: http.StatusForbidden,
			wantStatus:     "Error",
			wantError:      "forbidden",
		},
		{
			name:           "subscription not found",
			urlID:          "77",
			identity:       &middlewarectx.Identity{UserID: 5, Role: models.RoleAdmin},
			mockErr:        errs.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "subscription not found",
		},
		{
			name:           "invalid id",
			urlID:          "abc",
			identity:       &middlewarectx.Identity{UserID: 5, Role: models.RoleClient},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid subscription id",
		},
		{
			name:           "missing identity",
			urlID:          "3",
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(RenewServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockErr != nil || tt.mockSub != nil {
				serviceMock.On("Renew", mock.Anything, mock.Anything, subscription.Caller{
					UserID: tt.identity.UserID,
					Role:   tt.identity.Role,
				}).Return(tt.mockSub, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/"+tt.urlID+"/renew", nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.identity != nil {
				ctx = context.WithValue(ctx, middlewarectx.IdentityKey, tt.identity)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				sub, ok := data["subscription"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(3), sub["id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
