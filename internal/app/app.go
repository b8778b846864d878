// Package app собирает приложение: хранилище, кеш, брокер, сервисы
// и HTTP-сервер с маршрутами.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/pleytv/iptv-backend/internal/cache"
	"github.com/pleytv/iptv-backend/internal/config"
	"github.com/pleytv/iptv-backend/internal/lib/jwt"
	"github.com/pleytv/iptv-backend/internal/lib/rabbitmq"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/migrations"
	authservice "github.com/pleytv/iptv-backend/internal/services/auth"
	catalogservice "github.com/pleytv/iptv-backend/internal/services/catalog"
	paymentservice "github.com/pleytv/iptv-backend/internal/services/payment"
	statsservice "github.com/pleytv/iptv-backend/internal/services/stats"
	subservice "github.com/pleytv/iptv-backend/internal/services/subscription"
	"github.com/pleytv/iptv-backend/internal/storage/repository"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, err
	}

	// Брокер необязателен для старта: без него события платежей
	// просто не публикуются.
	var publisher *rabbitmq.Publisher
	var amqpConn *amqp.Connection
	if cfg.AddressRabbit != "" {
		conn, ch, err := rabbitmq.Connect(cfg.AddressRabbit)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", sl.Err(err))
		} else if err = rabbitmq.SetupExchange(ch, cfg.Exchange); err != nil {
			logger.Warn("rabbitmq exchange setup failed, events disabled", sl.Err(err))
			_ = conn.Close()
		} else {
			publisher = rabbitmq.NewPublisher(ch, cfg.Exchange)
			amqpConn = conn
		}
	}

	maker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshWindow)

	authSvc := authservice.New(db, maker, logger)
	catalogSvc := catalogservice.New(db, cacheRedis, logger, cfg.IgnoredChannels)
	subSvc := subservice.New(db, logger)
	statsSvc := statsservice.New(db, logger)

	var pub paymentservice.Publisher
	if publisher != nil {
		pub = publisher
	}
	paymentSvc := paymentservice.New(db, subSvc, pub, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, Services{
		Auth:         authSvc,
		Catalog:      catalogSvc,
		Subscription: subSvc,
		Payment:      paymentSvc,
		Stats:        statsSvc,
	}, cfg.UploadsDir)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqpConn != nil {
			_ = a.amqpConn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
