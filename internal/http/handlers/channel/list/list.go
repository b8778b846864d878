// Package list реализует HTTP-обработчик списка каналов.
//
// Выдача фильтруется по стране зрителя из токена и игнор-списку,
// так что клиент видит только доступные ему каналы.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы списка каналов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка каналов.
type Service interface {
	ListChannels(ctx context.Context, viewerCountry string) ([]*models.Channel, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список каналов
// @Description Возвращает каналы, доступные текущему пользователю.
// @Tags Channels
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Список каналов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var viewerCountry string
	if ident, ok := middlewarectx.FromContext(r.Context()); ok {
		viewerCountry = ident.Country
	}

	channels, err := h.service.ListChannels(r.Context(), viewerCountry)
	if err != nil {
		log.Error("failed to list channels", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list channels"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"channels": channels,
	}))
}
