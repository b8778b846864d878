package models

import "time"

// Статусы подписки.
const (
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Subscription представляет подписку пользователя на сервис.
// EndDate может быть nil — подписка без даты окончания; активной при чтении
// считается подписка со статусом active и EndDate в будущем либо nil.
type Subscription struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Status    string     `json:"status"`
	AutoRenew bool       `json:"auto_renew"`
	// UserName заполняется при административных выборках с JOIN к users.
	UserName string `json:"user,omitempty"`
}

// CurrentlyActive сообщает, действует ли подписка в момент now.
func (s *Subscription) CurrentlyActive(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}
