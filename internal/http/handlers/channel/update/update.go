// Package update реализует HTTP-обработчик редактирования канала.
// Маршрут доступен только администраторам.
package update

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
	"github.com/go-playground/validator"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Request — структура входных данных для редактирования канала.
type Request struct {
	Name       string `json:"name" validate:"required,min=2,max=200"`
	URL        string `json:"url" validate:"required,url"`
	LogoURL    string `json:"logo_url" validate:"omitempty,url"`
	Format     string `json:"format" validate:"required,oneof=m3u m3u8 mkv mp4"`
	Active     bool   `json:"active"`
	CategoryID *int64 `json:"category_id"`
	Country    string `json:"country" validate:"omitempty,min=2"`
}

// Handler обрабатывает HTTP-запросы редактирования каналов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики редактирования канала.
type Service interface {
	UpdateChannel(ctx context.Context, id int64, ch models.Channel) error
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
// @Summary Редактировать канал
// @Description Обновляет канал каталога. Только для администраторов.
// @Tags Channels
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "ID канала"
// @Param request body Request true "Новые данные канала"
// @Success 200 {object} response.Response "Канал обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 404 {object} response.ErrorResponse "Канал не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.update"

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

	var req Request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err = h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err = h.service.UpdateChannel(r.Context(), id, models.Channel{
		Name:       req.Name,
		URL:        req.URL,
		LogoURL:    req.LogoURL,
		Format:     req.Format,
		Active:     req.Active,
		CategoryID: req.CategoryID,
		Country:    req.Country,
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("channel not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("channel not found"))
			return
		}
		log.Error("failed to update channel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update channel"))
		return
	}

	log.Info("channel updated", slog.Int64("id", id))
	render.JSON(w, r, response.OK())
}
