package models

import "time"

// Статусы платежа. Переход в PaymentCompleted создаёт подписку,
// если активной у пользователя нет.
const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
)

// Способы оплаты.
const (
	MethodStripe = "Stripe"
	MethodPayPal = "PayPal"
)

// Payment — запись об оплате подписки.
type Payment struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"user_id"`
	Amount float64   `json:"amount"`
	Method string    `json:"method"`
	PaidAt time.Time `json:"paid_at"`
	Status string    `json:"status"`
	// UserName заполняется при выборках с JOIN к users.
	UserName string `json:"user,omitempty"`
}

// Stats — агрегаты для административной панели.
type Stats struct {
	TotalUsers     int     `json:"total_users"`
	TotalClients   int     `json:"total_clients"`
	TotalAdmins    int     `json:"total_admins"`
	ActiveChannels int     `json:"active_channels"`
	Subscriptions  int     `json:"subscriptions"`
	PaymentsToday  float64 `json:"payments_today"`
	PaymentsMonth  float64 `json:"payments_month"`
}
