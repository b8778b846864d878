package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создаёт подписанный токен с указанными claims,
	// проставляя IssuedAt и ExpiresAt самостоятельно.
	GenerateToken(claims Claims) (string, error)
	// ParseToken разбирает токен и возвращает его claims.
	ParseToken(tokenStr string) (*Claims, error)
	// NeedsRefresh сообщает, что токену пора выдать замену.
	NeedsRefresh(claims *Claims) bool
}

// MakerImpl реализует Maker с использованием секретного ключа,
// времени жизни токена и порога скользящего обновления.
type MakerImpl struct {
	secretKey     string        // Секретный ключ для подписи токенов.
	tokenTTL      time.Duration // Время жизни токена.
	refreshWindow time.Duration // Остаток, при котором токен перевыпускается.
}

// NewMaker создаёт новый экземпляр MakerImpl.
func NewMaker(secretKey string, ttl, refreshWindow time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:     secretKey,
		tokenTTL:      ttl,
		refreshWindow: refreshWindow,
	}
}

// GenerateToken создает JWT токен с профилем пользователя, подписывая его
// секретным ключом. Временные поля claims перезаписываются: IssuedAt — текущим
// моментом, ExpiresAt — текущим моментом плюс TTL.
func (j *MakerImpl) GenerateToken(claims Claims) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает Claims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// NeedsRefresh возвращает true, когда оставшееся время жизни токена меньше
// порога обновления. Новый токен выдаётся с теми же claims и свежим TTL.
func (j *MakerImpl) NeedsRefresh(claims *Claims) bool {
	return claims.Remaining(time.Now()) < j.refreshWindow
}
