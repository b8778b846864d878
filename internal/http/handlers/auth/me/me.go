// Package me реализует HTTP-обработчик выдачи собственного профиля
// по идентификатору из токена.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы на чтение собственного профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения профиля.
type Service interface {
	Me(ctx context.Context, id int64) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает профиль пользователя из хранилища по id из токена.
// @Tags Auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь удалён"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ident, ok := middlewarectx.FromContext(r.Context())
	if !ok {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.service.Me(r.Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("user no longer exists", slog.Int64("id", ident.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to read profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read profile"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user.View(),
	}))
}
