// Package autorenew реализует HTTP-обработчик переключения автопродления.
// Флаг меняет владелец подписки или администратор.
package autorenew

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/services/subscription"
)

// Request — структура входных данных для переключения автопродления.
// Поле обязано быть настоящим JSON-булем, иначе запрос отклоняется.
type Request struct {
	AutoRenew *bool `json:"auto_renew"`
}

// Handler обрабатывает HTTP-запросы переключения автопродления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики переключения автопродления.
type Service interface {
	SetAutoRenew(ctx context.Context, id int64, caller subscription.Caller, autoRenew bool) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Переключить автопродление
// @Description Включает или выключает автопродление подписки.
// @Tags Subscriptions
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "ID подписки"
// @Param request body Request true "Новое значение флага"
// @Success 200 {object} response.Response "Флаг обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или не булево значение"
// @Failure 403 {object} response.ErrorResponse "Чужая подписка"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/{id}/autorenew [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.autorenew"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid subscription id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
		return
	}

	ident, ok := middlewarectx.FromContext(r.Context())
	if !ok {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil || req.AutoRenew == nil {
		log.Error("auto_renew must be a boolean", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("auto_renew must be a boolean"))
		return
	}

	err = h.service.SetAutoRenew(r.Context(), id, subscription.Caller{
		UserID: ident.UserID,
		Role:   ident.Role,
	}, *req.AutoRenew)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrForbidden):
			log.Warn("autorenew change forbidden",
				slog.Int64("id", id), slog.Int64("user_id", ident.UserID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		case errors.Is(err, errs.ErrNotFound):
			log.Warn("subscription not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		default:
			log.Error("failed to update auto renew flag", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update auto renew flag"))
		}
		return
	}

	log.Info("auto renew flag updated",
		slog.Int64("id", id), slog.Bool("auto_renew", *req.AutoRenew))
	render.JSON(w, r, response.OK())
}
