// Package userremove реализует HTTP-обработчик удаления пользователя.
// Администратор не может удалить собственную учётную запись.
package userremove

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
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы удаления пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления пользователя.
type Service interface {
	DeleteUser(ctx context.Context, id, callerID int64) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Description Удаляет пользователя по ID. Только для администраторов, себя удалить нельзя.
// @Tags Users
// @Security BearerAuth
// @Produce  json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Пользователь удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или попытка удалить себя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.userremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid user id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	ident, ok := middlewarectx.FromContext(r.Context())
	if !ok {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal role check error"))
		return
	}

	if err = h.service.DeleteUser(r.Context(), id, ident.UserID); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			log.Warn("self delete rejected", slog.Int64("id", id))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("cannot delete own account"))
		case errors.Is(err, errs.ErrNotFound):
			log.Warn("user not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to delete user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not delete user"))
		}
		return
	}

	log.Info("user deleted", slog.Int64("id", id))
	render.JSON(w, r, response.OK())
}
