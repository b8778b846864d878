// Package create реализует HTTP-обработчик регистрации платежа.
// Платёж, созданный сразу завершённым, активирует подписку плательщика.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Request — структура входных данных для регистрации платежа.
type Request struct {
	UserID int64      `json:"user_id" validate:"required,gt=0"`
	Amount float64    `json:"amount" validate:"required,gt=0"`
	Method string     `json:"method" validate:"required,oneof=Stripe PayPal"`
	PaidAt *time.Time `json:"paid_at"`
	Status string     `json:"status" validate:"omitempty"`
}

// Handler обрабатывает HTTP-запросы регистрации платежей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации платежа.
type Service interface {
	Create(ctx context.Context, p models.Payment) (int64, error)
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
// @Summary Зарегистрировать платёж
// @Description Создает платёж. Только для администраторов.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные платежа"
// @Success 201 {object} map[string]any "Платёж создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

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

	payment := models.Payment{
		UserID: req.UserID,
		Amount: req.Amount,
		Method: req.Method,
		Status: req.Status,
	}
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}

	id, err := h.service.Create(r.Context(), payment)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("user not found", slog.Int64("user_id", req.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to create payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment"))
		return
	}

	log.Info("payment created", slog.Int64("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
