// Package models содержит доменные структуры платформы: пользователей,
// каталог каналов, подписки и платежи. Типы используются в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// Роли пользователей. RoleClientAlias принимается на входе и нормализуется
// к RoleClient.
const (
	RoleAdmin       = "admin"
	RoleClient      = "client"
	RoleClientAlias = "cliente"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	ID           int64      // Уникальный идентификатор пользователя
	Name         string     // Отображаемое имя
	Email        string     // Электронная почта (уникальная)
	PasswordHash string     // bcrypt-хэш пароля
	Role         string     // Роль пользователя, admin или client
	BirthDate    *time.Time // Дата рождения
	Country      string     // Страна
	PhotoURL     string     // Ссылка на фото профиля
	CreatedAt    time.Time  // Дата регистрации
}

// UserView — представление пользователя в API-ответах, без хэша пароля.
// Дата рождения сериализуется в формате DD/MM/YYYY.
type UserView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	BirthDate string    `json:"birth_date,omitempty"`
	Country   string    `json:"country,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// View возвращает представление пользователя для ответа API.
func (u *User) View() UserView {
	view := UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Country:   u.Country,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	}
	if u.BirthDate != nil {
		view.BirthDate = u.BirthDate.Format("02/01/2006")
	}
	return view
}
