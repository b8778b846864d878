// Package create реализует HTTP-обработчик добавления канала.
// Маршрут доступен только администраторам.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Request — структура входных данных для добавления канала.
type Request struct {
	Name       string `json:"name" validate:"required,min=2,max=200"`
	URL        string `json:"url" validate:"required,url"`
	LogoURL    string `json:"logo_url" validate:"omitempty,url"`
	Format     string `json:"format" validate:"required,oneof=m3u m3u8 mkv mp4"`
	Active     *bool  `json:"active"`
	CategoryID *int64 `json:"category_id"`
	Country    string `json:"country" validate:"omitempty,min=2"`
}

// Handler обрабатывает HTTP-запросы добавления каналов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики добавления канала.
type Service interface {
	CreateChannel(ctx context.Context, ch models.Channel) (int64, error)
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
// @Summary Добавить канал
// @Description Создает канал каталога. Только для администраторов.
// @Tags Channels
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового канала"
// @Success 201 {object} map[string]any "Канал создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /channels [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	id, err := h.service.CreateChannel(r.Context(), models.Channel{
		Name:       req.Name,
		URL:        req.URL,
		LogoURL:    req.LogoURL,
		Format:     req.Format,
		Active:     active,
		CategoryID: req.CategoryID,
		Country:    req.Country,
	})
	if err != nil {
		log.Error("failed to create channel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create channel"))
		return
	}

	log.Info("channel created", slog.Int64("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
