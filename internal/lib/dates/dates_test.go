package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBirthDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{
			name: "valid date",
			in:   "15/04/1990",
			want: time.Date(1990, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "leap day",
			in:   "29/02/2000",
			want: time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "day does not exist in month",
			in:      "31/04/1990",
			wantErr: true,
		},
		{
			name:    "month out of range",
			in:      "10/13/1990",
			wantErr: true,
		},
		{
			name:    "year before 1900",
			in:      "01/01/1899",
			wantErr: true,
		},
		{
			name:    "iso format rejected",
			in:      "1990-04-15",
			wantErr: true,
		},
		{
			name:    "empty string",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBirthDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestFormatBirthDate(t *testing.T) {
	d := time.Date(1985, 12, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "03/12/1985", FormatBirthDate(d))
}

func TestValidCountry(t *testing.T) {
	assert.True(t, ValidCountry("España"))
	assert.True(t, ValidCountry("Costa Rica"))
	assert.True(t, ValidCountry("Perú"))
	assert.False(t, ValidCountry("X"))
	assert.False(t, ValidCountry("USA1"))
	assert.False(t, ValidCountry(""))
}
