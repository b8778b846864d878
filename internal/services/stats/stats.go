// Package stats отдаёт агрегаты для административной панели.
package stats

import (
	"context"
	"log/slog"

	"github.com/pleytv/iptv-backend/internal/models"
)

// Repository определяет методы для получения агрегатов из хранилища.
type Repository interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Service реализует выдачу агрегатов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Dashboard возвращает сводку по пользователям, каналам и платежам.
func (s *Service) Dashboard(ctx context.Context) (*models.Stats, error) {
	return s.repo.GetStats(ctx)
}
