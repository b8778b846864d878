// Package dates отвечает за преобразование дат на границе API.
//
// Даты рождения передаются клиентами в формате DD/MM/YYYY, во внутренних
// структурах и в базе хранятся как time.Time.
package dates

import (
	"fmt"
	"regexp"
	"time"
)

// LayoutDDMMYYYY — формат дат в телах запросов (дата рождения).
const LayoutDDMMYYYY = "02/01/2006"

var countryRe = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚáéíóúÑñ ]{2,}$`)

// ParseBirthDate разбирает дату рождения в формате DD/MM/YYYY.
// Год ограничен диапазоном от 1900 до текущего.
func ParseBirthDate(s string) (time.Time, error) {
	const op = "dates.ParseBirthDate"
	d, err := time.Parse(LayoutDDMMYYYY, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if d.Year() < 1900 || d.Year() > time.Now().Year() {
		return time.Time{}, fmt.Errorf("%s: year %d out of range", op, d.Year())
	}
	return d, nil
}

// FormatBirthDate приводит дату к формату DD/MM/YYYY для ответа клиенту.
func FormatBirthDate(d time.Time) string {
	return d.Format(LayoutDDMMYYYY)
}

// ValidCountry проверяет название страны: буквы (включая испанские) и
// пробелы, минимум два символа.
func ValidCountry(s string) bool {
	return countryRe.MatchString(s)
}
