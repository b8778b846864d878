package month

import (
	"testing"
	"time"
)

func TestAddMonth_TableTests(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "regular mid-month date",
			in:   time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to feb 29 on leap year",
			in:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to feb 28 on non-leap year",
			in:   time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "feb 28 moves to mar 28, no clamp",
			in:   time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
			want: time.Date(2023, 3, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "mar 31 clamps to apr 30",
			in:   time.Date(2024, 3, 31, 12, 30, 0, 0, time.UTC),
			want: time.Date(2024, 4, 30, 12, 30, 0, 0, time.UTC),
		},
		{
			name: "dec 15 rolls over the year",
			in:   time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonth(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonth(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextRenewalEnd(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		currentEnd *time.Time
		want       time.Time
	}{
		{
			name:       "nil end date renews from now",
			currentEnd: nil,
			want:       time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "past end date renews from now",
			currentEnd: &past,
			want:       time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "future end date extends the existing window",
			currentEnd: &future,
			want:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRenewalEnd(tt.currentEnd, now)
			if !got.Equal(tt.want) {
				t.Errorf("NextRenewalEnd() = %v, want %v", got, tt.want)
			}
		})
	}
}
