// Package profilephoto реализует HTTP-обработчик загрузки фото профиля.
//
// Файл принимается multipart-формой в поле photo, сохраняется в каталог
// загрузок под именем на основе UUID и раздаётся по пути /uploads.
package profilephoto

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pleytv/iptv-backend/internal/http/middlewarectx"
	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
)

// maxPhotoSize ограничивает размер загружаемого файла.
const maxPhotoSize = 5 << 20

// Handler обрабатывает HTTP-запросы загрузки фото профиля.
type Handler struct {
	log        *slog.Logger
	service    Service
	uploadsDir string
}

// Service описывает интерфейс бизнес-логики обновления фото.
type Service interface {
	UpdatePhoto(ctx context.Context, id int64, photoURL string) (string, *models.User, error)
}

// New создает новый экземпляр Handler. uploadsDir — каталог для файлов.
func New(log *slog.Logger, service Service, uploadsDir string) *Handler {
	return &Handler{log: log, service: service, uploadsDir: uploadsDir}
}

// ServeHTTP godoc
// @Summary Загрузить фото профиля
// @Description Сохраняет фото профиля и возвращает свежий токен со ссылкой на него.
// @Tags Auth
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param photo formData file true "Файл изображения"
// @Success 200 {object} map[string]any "Фото обновлено"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует или не читается"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /profile/photo [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profilephoto"

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

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		log.Error("photo field missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("photo file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		log.Warn("unsupported photo extension", slog.String("ext", ext))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unsupported image format"))
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		log.Error("failed to create photo file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not store photo"))
		return
	}
	defer func() {
		_ = dst.Close()
	}()
	if _, err = io.Copy(dst, io.LimitReader(file, maxPhotoSize)); err != nil {
		log.Error("failed to write photo file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not store photo"))
		return
	}

	photoURL := "/uploads/" + name
	token, user, err := h.service.UpdatePhoto(r.Context(), ident.UserID, photoURL)
	if err != nil {
		log.Error("failed to update photo url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update photo"))
		return
	}

	log.Info("profile photo updated",
		slog.Int64("id", ident.UserID),
		slog.String("photo_url", photoURL))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"user":  user.View(),
	}))
}
