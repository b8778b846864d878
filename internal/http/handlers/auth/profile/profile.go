// Package profile реализует HTTP-обработчик обновления собственного профиля.
// После обновления возвращается свежий токен с актуальным клейм-набором.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
	"github.com/pleytv/iptv-backend/internal/services/auth"
)

// Request — структура входных данных для обновления профиля.
type Request struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Country   string `json:"country" validate:"omitempty,min=2"`
	BirthDate string `json:"birth_date" validate:"omitempty"`
}

// Handler обрабатывает HTTP-запросы обновления профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики обновления профиля.
type Service interface {
	UpdateProfile(ctx context.Context, id int64, upd auth.ProfileUpdate) (string, *models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить профиль
// @Description Обновляет профиль текущего пользователя и возвращает свежий токен.
// @Tags Auth
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Новые данные профиля"
// @Success 200 {object} map[string]any "Профиль обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, user, err := h.service.UpdateProfile(r.Context(), ident.UserID, auth.ProfileUpdate{
		Name:      req.Name,
		Email:     req.Email,
		Country:   req.Country,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			log.Warn("invalid profile data", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid profile data"))
		case errors.Is(err, errs.ErrAlreadyExists):
			log.Warn("email already taken", slog.String("email", req.Email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email already taken"))
		case errors.Is(err, errs.ErrNotFound):
			log.Warn("user not found", slog.Int64("id", ident.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update profile", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update profile"))
		}
		return
	}

	log.Info("profile updated", slog.Int64("id", ident.UserID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"user":  user.View(),
	}))
}
