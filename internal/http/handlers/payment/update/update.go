// Package update реализует HTTP-обработчик редактирования платежа.
// Перевод платежа в статус completed активирует подписку плательщика.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Request — структура входных данных для редактирования платежа.
type Request struct {
	UserID int64      `json:"user_id" validate:"required,gt=0"`
	Amount float64    `json:"amount" validate:"required,gt=0"`
	Method string     `json:"method" validate:"required,oneof=Stripe PayPal"`
	PaidAt *time.Time `json:"paid_at"`
	Status string     `json:"status" validate:"required"`
}

// Handler обрабатывает HTTP-запросы редактирования платежей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики редактирования платежа.
type Service interface {
	Update(ctx context.Context, id int64, p models.Payment) error
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
// @Summary Редактировать платёж
// @Description Обновляет платёж. Переход в completed создаёт подписку плательщику.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "ID платежа"
// @Param request body Request true "Новые данные платежа"
// @Success 200 {object} response.Response "Платёж обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid payment id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payment id"))
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

	payment := models.Payment{
		UserID: req.UserID,
		Amount: req.Amount,
		Method: req.Method,
		Status: req.Status,
	}
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}

	if err = h.service.Update(r.Context(), id, payment); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("payment not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		log.Error("failed to update payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update payment"))
		return
	}

	log.Info("payment updated", slog.Int64("id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.OK())
}
