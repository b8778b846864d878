// Package middlewarectx содержит HTTP middleware для проверки JWT токенов и ролей.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization и в случае успеха добавляет в контекст профиль пользователя
// для дальнейшего использования в обработчиках. Отсутствие заголовка — 401,
// присутствующий, но невалидный или истёкший токен — 403.
//
// Когда остаток жизни токена меньше порога обновления, middleware выпускает
// замену и отдаёт её в заголовке X-New-Token; клиент может его игнорировать.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pleytv/iptv-backend/internal/http/response"
	"github.com/pleytv/iptv-backend/internal/lib/jwt"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ, под которым в контексте лежит *Identity.
const IdentityKey Key = "identity"

// NewTokenHeader — заголовок, в котором возвращается перевыпущенный токен.
const NewTokenHeader = "X-New-Token"

// Identity — расшифрованный профиль пользователя из токена.
type Identity struct {
	UserID    int64
	Name      string
	Email     string
	Role      string
	Country   string
	BirthDate string
	PhotoURL  string
}

// FromContext достаёт профиль пользователя, положенный JWTMiddleware.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*Identity)
	return id, ok
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке
// Authorization и кладёт профиль пользователя в контекст запроса.
func JWTMiddleware(maker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			if maker.NeedsRefresh(claims) {
				if refreshed, err := maker.GenerateToken(*claims); err != nil {
					log.Warn("failed to refresh token", sl.Err(err))
				} else {
					w.Header().Set(NewTokenHeader, refreshed)
				}
			}

			ident := &Identity{
				UserID:    claims.UserID,
				Name:      claims.Name,
				Email:     claims.Email,
				Role:      claims.Role,
				Country:   claims.Country,
				BirthDate: claims.BirthDate,
				PhotoURL:  claims.PhotoURL,
			}
			ctx := context.WithValue(r.Context(), IdentityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
