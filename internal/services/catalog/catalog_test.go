package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/models"
	"github.com/pleytv/iptv-backend/internal/services/catalog"
)

// Мок для Repository
type CatalogRepoMock struct {
	mock.Mock
}

func (m *CatalogRepoMock) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *CatalogRepoMock) ListChannelsByCategory(ctx context.Context, categoryID int64) ([]*models.Channel, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *CatalogRepoMock) GetChannel(ctx context.Context, id int64) (*models.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *CatalogRepoMock) CreateChannel(ctx context.Context, ch models.Channel) (int64, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CatalogRepoMock) UpdateChannel(ctx context.Context, id int64, ch models.Channel) error {
	args := m.Called(ctx, id, ch)
	return args.Error(0)
}

func (m *CatalogRepoMock) DeleteChannel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CatalogRepoMock) GetActiveChannelURL(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *CatalogRepoMock) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *CatalogRepoMock) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *CatalogRepoMock) CreateCategory(ctx context.Context, name, logoURL string) (int64, error) {
	args := m.Called(ctx, name, logoURL)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CatalogRepoMock) ListAds(ctx context.Context, kind string) ([]*models.Ad, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ad), args.Error(1)
}

// Мок для Cache
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newService(repo *CatalogRepoMock, cache *CacheMock, ignoredCSV string) *catalog.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return catalog.New(repo, cache, log, ignoredCSV)
}

func missCache(cache *CacheMock) {
	cache.On("Get", mock.Anything, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func TestCatalogService_ListChannels_Filters(t *testing.T) {
	channels := []*models.Channel{
		{ID: 1, Name: "Global News", Country: ""},
		{ID: 2, Name: "Canal MX", Country: "MX"},
		{ID: 3, Name: "Canal ES", Country: "ES"},
		{ID: 4, Name: "Blocked TV", Country: ""},
	}

	tests := []struct {
		name          string
		viewerCountry string
		ignoredCSV    string
		wantIDs       []int64
	}{
		{
			name:          "viewer country hides foreign channels",
			viewerCountry: "MX",
			wantIDs:       []int64{1, 2, 4},
		},
		{
			name:          "country match is case insensitive",
			viewerCountry: "mx",
			wantIDs:       []int64{1, 2, 4},
		},
		{
			name:          "empty viewer country sees everything",
			viewerCountry: "",
			wantIDs:       []int64{1, 2, 3, 4},
		},
		{
			name:          "ignore list hides channels by name",
			viewerCountry: "",
			ignoredCSV:    "blocked tv, Other",
			wantIDs:       []int64{1, 2, 3},
		},
		{
			name:          "ignore list and country combine",
			viewerCountry: "ES",
			ignoredCSV:    "Blocked TV",
			wantIDs:       []int64{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(CatalogRepoMock)
			cache := new(CacheMock)
			missCache(cache)
			repo.On("ListChannels", mock.Anything).Return(channels, nil).Once()

			svc := newService(repo, cache, tt.ignoredCSV)
			got, err := svc.ListChannels(context.Background(), tt.viewerCountry)
			require.NoError(t, err)

			gotIDs := make([]int64, 0, len(got))
			for _, ch := range got {
				gotIDs = append(gotIDs, ch.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
			repo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_ListChannels_CacheHit(t *testing.T) {
	repo := new(CatalogRepoMock)
	cache := new(CacheMock)
	cache.On("Get", "catalog:channels", mock.Anything).Return(true, nil).Once()

	svc := newService(repo, cache, "")
	got, err := svc.ListChannels(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)

	repo.AssertNotCalled(t, "ListChannels", mock.Anything)
	cache.AssertExpectations(t)
}

func TestCatalogService_CreateChannel_InvalidatesCache(t *testing.T) {
	repo := new(CatalogRepoMock)
	cache := new(CacheMock)
	repo.On("CreateChannel", mock.Anything, mock.Anything).Return(int64(11), nil).Once()
	cache.On("Invalidate", "catalog:channels").Return(nil).Once()

	svc := newService(repo, cache, "")
	id, err := svc.CreateChannel(context.Background(), models.Channel{Name: "News"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCatalogService_StreamURL(t *testing.T) {
	t.Run("active channel", func(t *testing.T) {
		repo := new(CatalogRepoMock)
		repo.On("GetActiveChannelURL", mock.Anything, int64(3)).
			Return("http://stream/live.m3u8", nil).Once()

		svc := newService(repo, new(CacheMock), "")
		url, err := svc.StreamURL(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "http://stream/live.m3u8", url)
	})

	t.Run("empty url maps to not found", func(t *testing.T) {
		repo := new(CatalogRepoMock)
		repo.On("GetActiveChannelURL", mock.Anything, int64(3)).Return("", nil).Once()

		svc := newService(repo, new(CacheMock), "")
		_, err := svc.StreamURL(context.Background(), 3)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestCatalogService_Ads(t *testing.T) {
	t.Run("banner returns builtin set", func(t *testing.T) {
		repo := new(CatalogRepoMock)
		svc := newService(repo, new(CacheMock), "")

		ads, err := svc.Ads(context.Background(), "banner")
		require.NoError(t, err)
		require.Len(t, ads, 2)
		assert.Equal(t, "banner", ads[0].Kind)
		repo.AssertNotCalled(t, "ListAds", mock.Anything, mock.Anything)
	})

	t.Run("unknown kind falls back to storage", func(t *testing.T) {
		repo := new(CatalogRepoMock)
		repo.On("ListAds", mock.Anything, "popup").
			Return([]*models.Ad{{Kind: "popup"}}, nil).Once()

		svc := newService(repo, new(CacheMock), "")
		ads, err := svc.Ads(context.Background(), "popup")
		require.NoError(t, err)
		require.Len(t, ads, 1)
		repo.AssertExpectations(t)
	})
}

func TestCatalogService_ListCategories_Cached(t *testing.T) {
	repo := new(CatalogRepoMock)
	cache := new(CacheMock)
	categories := []*models.Category{{ID: 1, Name: "Deportes"}}

	cache.On("Get", "catalog:categories", mock.Anything).Return(false, nil).Once()
	repo.On("ListCategories", mock.Anything).Return(categories, nil).Once()
	cache.On("Set", "catalog:categories", categories, mock.Anything).Return(nil).Once()

	svc := newService(repo, cache, "")
	got, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, categories, got)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
