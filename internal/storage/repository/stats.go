package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pleytv/iptv-backend/internal/models"
)

// GetStats собирает агрегаты для административной панели.
func (s *Storage) GetStats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.GetStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	st := &models.Stats{}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM users`, &st.TotalUsers},
		{`SELECT COUNT(*) FROM users WHERE role = 'client'`, &st.TotalClients},
		{`SELECT COUNT(*) FROM users WHERE role = 'admin'`, &st.TotalAdmins},
		{`SELECT COUNT(*) FROM channels WHERE active = TRUE`, &st.ActiveChannels},
		{`SELECT COUNT(*) FROM subscriptions`, &st.Subscriptions},
	}
	for _, c := range counts {
		if err := s.DB.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	var paymentsToday, paymentsMonth sql.NullFloat64
	if err := s.DB.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM payments WHERE paid_at::DATE = CURRENT_DATE`).
		Scan(&paymentsToday); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.DB.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM payments
		 WHERE date_trunc('month', paid_at) = date_trunc('month', CURRENT_DATE)`).
		Scan(&paymentsMonth); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	st.PaymentsToday = paymentsToday.Float64
	st.PaymentsMonth = paymentsMonth.Float64

	return st, nil
}
