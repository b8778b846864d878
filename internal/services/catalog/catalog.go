// Package catalog содержит бизнес-логику каталога: каналы, категории,
// рекламные материалы и выдача ссылок на поток. Списки кешируются в Redis
// и инвалидируются при изменениях.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

const (
	cacheKeyChannels   = "catalog:channels"
	cacheKeyCategories = "catalog:categories"
	cacheTTL           = 10 * time.Minute
)

// Repository определяет методы для работы с каталогом в хранилище.
type Repository interface {
	ListChannels(ctx context.Context) ([]*models.Channel, error)
	ListChannelsByCategory(ctx context.Context, categoryID int64) ([]*models.Channel, error)
	GetChannel(ctx context.Context, id int64) (*models.Channel, error)
	CreateChannel(ctx context.Context, ch models.Channel) (int64, error)
	UpdateChannel(ctx context.Context, id int64, ch models.Channel) error
	DeleteChannel(ctx context.Context, id int64) error
	GetActiveChannelURL(ctx context.Context, id int64) (string, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, name, logoURL string) (int64, error)
	ListAds(ctx context.Context, kind string) ([]*models.Ad, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику каталога.
type Service struct {
	repo    Repository
	cache   Cache
	log     *slog.Logger
	ignored map[string]struct{}
}

// New создает новый экземпляр Service. ignoredCSV — список имён каналов
// через запятую, которые исключаются из любой выдачи.
func New(repo Repository, cache Cache, log *slog.Logger, ignoredCSV string) *Service {
	ignored := make(map[string]struct{})
	for _, name := range strings.Split(ignoredCSV, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			ignored[name] = struct{}{}
		}
	}
	return &Service{repo: repo, cache: cache, log: log, ignored: ignored}
}

// ListChannels возвращает каналы, видимые зрителю из указанной страны.
// Канал без привязки к стране виден всем; канал со страной — только её
// жителям. Каналы из игнор-списка скрываются всегда. Пустая строна зрителя
// означает отсутствие ограничения.
func (s *Service) ListChannels(ctx context.Context, viewerCountry string) ([]*models.Channel, error) {
	const op = "services.catalog.ListChannels"

	var channels []*models.Channel
	found, err := s.cache.Get(cacheKeyChannels, &channels)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKeyChannels), sl.Err(err))
	}
	if !found {
		channels, err = s.repo.ListChannels(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = s.cache.Set(cacheKeyChannels, channels, cacheTTL); err != nil {
			s.log.Warn("cache write failed", slog.String("key", cacheKeyChannels), sl.Err(err))
		}
	}

	return s.filter(channels, viewerCountry), nil
}

// ChannelsByCategory возвращает каналы категории с теми же фильтрами видимости.
func (s *Service) ChannelsByCategory(ctx context.Context, categoryID int64, viewerCountry string) ([]*models.Channel, error) {
	const op = "services.catalog.ChannelsByCategory"

	channels, err := s.repo.ListChannelsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.filter(channels, viewerCountry), nil
}

func (s *Service) filter(channels []*models.Channel, viewerCountry string) []*models.Channel {
	viewerCountry = strings.ToLower(strings.TrimSpace(viewerCountry))
	result := make([]*models.Channel, 0, len(channels))
	for _, ch := range channels {
		if _, skip := s.ignored[strings.ToLower(strings.TrimSpace(ch.Name))]; skip {
			continue
		}
		restriction := strings.ToLower(strings.TrimSpace(ch.Country))
		if restriction != "" && viewerCountry != "" && restriction != viewerCountry {
			continue
		}
		result = append(result, ch)
	}
	return result
}

// ReadChannel возвращает канал по ID без фильтров видимости.
func (s *Service) ReadChannel(ctx context.Context, id int64) (*models.Channel, error) {
	return s.repo.GetChannel(ctx, id)
}

// CreateChannel добавляет канал и сбрасывает кеш списка.
func (s *Service) CreateChannel(ctx context.Context, ch models.Channel) (int64, error) {
	const op = "services.catalog.CreateChannel"

	id, err := s.repo.CreateChannel(ctx, ch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateChannels()
	s.log.Info("channel created", slog.Int64("id", id), slog.String("name", ch.Name))
	return id, nil
}

// UpdateChannel обновляет канал и сбрасывает кеш списка.
func (s *Service) UpdateChannel(ctx context.Context, id int64, ch models.Channel) error {
	const op = "services.catalog.UpdateChannel"

	if err := s.repo.UpdateChannel(ctx, id, ch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateChannels()
	return nil
}

// RemoveChannel удаляет канал и сбрасывает кеш списка.
func (s *Service) RemoveChannel(ctx context.Context, id int64) error {
	const op = "services.catalog.RemoveChannel"

	if err := s.repo.DeleteChannel(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateChannels()
	return nil
}

func (s *Service) invalidateChannels() {
	if err := s.cache.Invalidate(cacheKeyChannels); err != nil {
		s.log.Warn("cache invalidation failed",
			slog.String("key", cacheKeyChannels), sl.Err(err))
	}
}

// StreamURL возвращает ссылку на поток активного канала.
// Неактивный или отсутствующий канал — errs.ErrNotFound.
func (s *Service) StreamURL(ctx context.Context, id int64) (string, error) {
	const op = "services.catalog.StreamURL"

	url, err := s.repo.GetActiveChannelURL(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if url == "" {
		return "", fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return url, nil
}

// ListCategories возвращает все категории, используя кеш.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "services.catalog.ListCategories"

	var categories []*models.Category
	found, err := s.cache.Get(cacheKeyCategories, &categories)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKeyCategories), sl.Err(err))
	}
	if found {
		return categories, nil
	}

	categories, err = s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(cacheKeyCategories, categories, cacheTTL); err != nil {
		s.log.Warn("cache write failed", slog.String("key", cacheKeyCategories), sl.Err(err))
	}
	return categories, nil
}

// CreateCategory добавляет категорию и сбрасывает кеш списка.
func (s *Service) CreateCategory(ctx context.Context, name, logoURL string) (int64, error) {
	const op = "services.catalog.CreateCategory"

	id, err := s.repo.CreateCategory(ctx, name, logoURL)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Invalidate(cacheKeyCategories); err != nil {
		s.log.Warn("cache invalidation failed",
			slog.String("key", cacheKeyCategories), sl.Err(err))
	}
	return id, nil
}

// defaultAds вшитые рекламные материалы, отдаваемые без обращения к базе.
var defaultAds = map[string][]*models.Ad{
	"banner": {
		{Kind: "banner", ImageURL: "/static/ads/banner1.png"},
		{Kind: "banner", ImageURL: "/static/ads/banner2.png"},
	},
	"logo": {
		{Kind: "logo", ImageURL: "/static/ads/logo.png"},
	},
}

// Ads возвращает рекламные материалы указанного типа: для banner и logo —
// вшитый набор, для остальных типов — записи из базы.
func (s *Service) Ads(ctx context.Context, kind string) ([]*models.Ad, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if ads, ok := defaultAds[kind]; ok {
		return ads, nil
	}
	return s.repo.ListAds(ctx, kind)
}
