// Package channels реализует HTTP-обработчик выборки каналов по категории.
//
// Параметр id принимает идентификатор категории либо значение all —
// тогда возвращаются каналы всех категорий.
package channels

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы выборки каналов по категории.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки каналов.
type Service interface {
	ListChannels(ctx context.Context, viewerCountry string) ([]*models.Channel, error)
	ChannelsByCategory(ctx context.Context, categoryID int64, viewerCountry string) ([]*models.Channel, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каналы категории
// @Description Возвращает каналы выбранной категории; id=all — каналы всех категорий.
// @Tags Categories
// @Produce  json
// @Param id query string true "ID категории или all"
// @Success 200 {object} map[string]any "Список каналов"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID категории"
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /categories/channels [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.category.channels"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var viewerCountry string
	if ident, ok := middlewarectx.FromContext(r.Context()); ok {
		viewerCountry = ident.Country
	}

	rawID := strings.TrimSpace(r.URL.Query().Get("id"))

	var channels []*models.Channel
	var err error
	if rawID == "" || strings.EqualFold(rawID, "all") {
		channels, err = h.service.ListChannels(r.Context(), viewerCountry)
	} else {
		var id int64
		id, err = strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			log.Error("invalid category id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid category id"))
			return
		}
		channels, err = h.service.ChannelsByCategory(r.Context(), id, viewerCountry)
	}
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("category not found", slog.String("id", rawID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("category not found"))
			return
		}
		log.Error("failed to list channels", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list channels"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"channels": channels,
	}))
}
