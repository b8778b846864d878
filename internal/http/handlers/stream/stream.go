// Package stream реализует HTTP-обработчик выдачи потока канала.
// Активный канал отдаётся 302-редиректом на его URL.
package stream

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

// Handler обрабатывает HTTP-запросы потока канала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи потока.
type Service interface {
	StreamURL(ctx context.Context, id int64) (string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поток канала
// @Description Перенаправляет на URL потока активного канала.
// @Tags Channels
// @Security BearerAuth
// @Param id path int true "ID канала"
// @Success 302 "Редирект на поток"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Канал не найден или неактивен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /stream/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stream"

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

	url, err := h.service.StreamURL(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("stream not available", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("channel not found or inactive"))
			return
		}
		log.Error("failed to resolve stream url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve stream"))
		return
	}

	log.Info("stream redirect", slog.Int64("id", id))
	http.Redirect(w, r, url, http.StatusFound)
}
