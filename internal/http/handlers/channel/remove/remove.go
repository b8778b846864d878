// Package remove реализует HTTP-обработчик удаления канала.
// Маршрут доступен только администраторам.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы удаления каналов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления канала.
type Service interface {
	RemoveChannel(ctx context.Context, id int64) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить канал
// @Description Удаляет канал каталога. Только для администраторов.
// @Tags Channels
// @Security BearerAuth
// @Produce  json
// @Param id path int true "ID канала"
// @Success 200 {object} response.Response "Канал удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Канал не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid channel id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid channel id"))
		return
	}

	if err = h.service.RemoveChannel(r.Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("channel not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("channel not found"))
			return
		}
		log.Error("failed to delete channel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete channel"))
		return
	}

	log.Info("channel deleted", slog.Int64("id", id))
	render.JSON(w, r, response.OK())
}
