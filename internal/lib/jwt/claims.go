// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Claims расширяет стандартные claims JWT полным профилем пользователя:
// токен самодостаточен, и на каждый запрос база данных не опрашивается.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает пользовательские данные, хранящиеся в JWT.
type Claims struct {
	UserID               int64  `json:"id"`         // Идентификатор пользователя
	Name                 string `json:"name"`       // Отображаемое имя
	Email                string `json:"email"`      // Электронная почта
	Role                 string `json:"role"`       // Роль: admin или client
	Country              string `json:"country"`    // Страна пользователя
	BirthDate            string `json:"birth_date"` // Дата рождения в формате DD/MM/YYYY
	PhotoURL             string `json:"photo_url"`  // Ссылка на фото профиля
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Remaining возвращает оставшееся время жизни токена.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
