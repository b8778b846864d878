package middlewarectx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/models"
)

// AdminOnlyMiddleware пропускает дальше только пользователей с ролью admin.
//
// Роль перед сравнением очищается от пробелов и приводится к нижнему
// регистру. Отсутствие профиля в контексте — ошибка конфигурации цепочки
// middleware и отвечает 500, а не 403.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnlyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			ident, ok := FromContext(r.Context())
			if !ok {
				log.Error("identity missing in context")
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal role check error"))
				return
			}

			role := strings.ToLower(strings.TrimSpace(ident.Role))
			if role != models.RoleAdmin {
				log.Error("access denied: admin role required",
					slog.String("role", ident.Role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied: admin role required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
