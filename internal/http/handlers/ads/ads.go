// Package ads реализует HTTP-обработчик выдачи рекламных материалов.
package ads

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы рекламных материалов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи рекламы.
type Service interface {
	Ads(ctx context.Context, kind string) ([]*models.Ad, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Рекламные материалы
// @Description Возвращает рекламные материалы указанного типа (banner, logo и другие).
// @Tags Ads
// @Produce  json
// @Param tipo query string false "Тип материала" default(banner)
// @Success 200 {object} map[string]any "Список материалов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /ads [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ads"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	kind := r.URL.Query().Get("tipo")
	if kind == "" {
		kind = "banner"
	}

	items, err := h.service.Ads(r.Context(), kind)
	if err != nil {
		log.Error("failed to list ads", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list ads"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"ads": items,
	}))
}
