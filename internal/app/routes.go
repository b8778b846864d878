package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pleytv/iptv-backend/internal/http/handlers/ads"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/login"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/me"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/profile"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/profilepassword"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/profilephoto"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/register"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/registeradmin"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/userlist"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/userremove"
	"github.com/pleytv/iptv-backend/internal/http/handlers/auth/userupdate"
	categorychannels "github.com/pleytv/iptv-backend/internal/http/handlers/category/channels"
	categorycreate "github.com/pleytv/iptv-backend/internal/http/handlers/category/create"
	categorylist "github.com/pleytv/iptv-backend/internal/http/handlers/category/list"
	channelcreate "github.com/pleytv/iptv-backend/internal/http/handlers/channel/create"
	channellist "github.com/pleytv/iptv-backend/internal/http/handlers/channel/list"
	channelread "github.com/pleytv/iptv-backend/internal/http/handlers/channel/read"
	channelremove "github.com/pleytv/iptv-backend/internal/http/handlers/channel/remove"
	channelupdate "github.com/pleytv/iptv-backend/internal/http/handlers/channel/update"
	"github.com/pleytv/iptv-backend/internal/http/handlers/health"
	paymentcreate "github.com/pleytv/iptv-backend/internal/http/handlers/payment/create"
	paymentlist "github.com/pleytv/iptv-backend/internal/http/handlers/payment/list"
	paymentread "github.com/pleytv/iptv-backend/internal/http/handlers/payment/read"
	paymentremove "github.com/pleytv/iptv-backend/internal/http/handlers/payment/remove"
	paymentupdate "github.com/pleytv/iptv-backend/internal/http/handlers/payment/update"
	"github.com/pleytv/iptv-backend/internal/http/handlers/stats"
	"github.com/pleytv/iptv-backend/internal/http/handlers/stream"
	subautorenew "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/autorenew"
	subcreate "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/create"
	sublist "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/list"
	submine "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/mine"
	subread "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/read"
	subremove "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/remove"
	subrenew "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/renew"
	subupdate "github.com/pleytv/iptv-backend/internal/http/handlers/subscription/update"
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/lib/jwt"
	authservice "github.com/pleytv/iptv-backend/internal/services/auth"
	catalogservice "github.com/pleytv/iptv-backend/internal/services/catalog"
	paymentservice "github.com/pleytv/iptv-backend/internal/services/payment"
	statsservice "github.com/pleytv/iptv-backend/internal/services/stats"
	subservice "github.com/pleytv/iptv-backend/internal/services/subscription"
)

// Services объединяет сервисы, необходимые маршрутам.
type Services struct {
	Auth         *authservice.Service
	Catalog      *catalogservice.Service
	Subscription *subservice.Service
	Payment      *paymentservice.Service
	Stats        *statsservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker jwt.Maker, svc Services, uploadsDir string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/categories", categorylist.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/categories/channels", categorychannels.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/ads", ads.New(logger, svc.Catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/me", me.New(logger, svc.Auth).ServeHTTP)
			r.Put("/profile", profile.New(logger, svc.Auth).ServeHTTP)
			r.Put("/profile/password", profilepassword.New(logger, svc.Auth).ServeHTTP)
			r.Put("/profile/photo", profilephoto.New(logger, svc.Auth, uploadsDir).ServeHTTP)

			r.Get("/channels", channellist.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/channels/{id}", channelread.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/stream/{id}", stream.New(logger, svc.Catalog).ServeHTTP)

			r.Get("/subscriptions/mine", submine.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscriptions/{id}/renew", subrenew.New(logger, svc.Subscription).ServeHTTP)
			r.Put("/subscriptions/{id}/autorenew", subautorenew.New(logger, svc.Subscription).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))

				r.Post("/register-admin", registeradmin.New(logger, svc.Auth).ServeHTTP)
				r.Get("/users", userlist.New(logger, svc.Auth).ServeHTTP)
				r.Put("/users/{id}", userupdate.New(logger, svc.Auth).ServeHTTP)
				r.Delete("/users/{id}", userremove.New(logger, svc.Auth).ServeHTTP)

				r.Post("/channels", channelcreate.New(logger, svc.Catalog).ServeHTTP)
				r.Put("/channels/{id}", channelupdate.New(logger, svc.Catalog).ServeHTTP)
				r.Delete("/channels/{id}", channelremove.New(logger, svc.Catalog).ServeHTTP)
				r.Post("/categories", categorycreate.New(logger, svc.Catalog).ServeHTTP)

				r.Get("/subscriptions", sublist.New(logger, svc.Subscription).ServeHTTP)
				r.Post("/subscriptions", subcreate.New(logger, svc.Subscription).ServeHTTP)
				r.Get("/subscriptions/{id}", subread.New(logger, svc.Subscription).ServeHTTP)
				r.Put("/subscriptions/{id}", subupdate.New(logger, svc.Subscription).ServeHTTP)
				r.Delete("/subscriptions/{id}", subremove.New(logger, svc.Subscription).ServeHTTP)

				r.Get("/payments", paymentlist.New(logger, svc.Payment).ServeHTTP)
				r.Post("/payments", paymentcreate.New(logger, svc.Payment).ServeHTTP)
				r.Get("/payments/{id}", paymentread.New(logger, svc.Payment).ServeHTTP)
				r.Put("/payments/{id}", paymentupdate.New(logger, svc.Payment).ServeHTTP)
				r.Delete("/payments/{id}", paymentremove.New(logger, svc.Payment).ServeHTTP)

				r.Get("/stats", stats.New(logger, svc.Stats).ServeHTTP)
			})

			// Сводка доступна и клиенту: те же агрегаты без детализации.
			r.Get("/dashboard", stats.New(logger, svc.Stats).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
	r.Get("/uploads/*", fs.ServeHTTP)
}
