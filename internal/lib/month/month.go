// Package month содержит календарную арифметику для продления подписок.
package month

import "time"

// AddMonth возвращает дату ровно на один календарный месяц позже d.
//
// time.AddDate нормализует переполнение: 31 января + 1 месяц даёт 2–3 марта,
// потому что в феврале нет 31-го числа. Переполнение определяется по смене
// числа месяца; в этом случае результат прижимается к последнему дню
// целевого месяца (31 января -> 28/29 февраля), а не переносится вперёд.
func AddMonth(d time.Time) time.Time {
	next := d.AddDate(0, 1, 0)
	if next.Day() != d.Day() {
		// День нулевого числа — последний день предыдущего месяца.
		next = time.Date(next.Year(), next.Month(), 0,
			d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
	}
	return next
}

// NextRenewalEnd вычисляет новую дату окончания при продлении подписки.
//
// Если текущая дата окончания отсутствует или уже в прошлом, месяц
// отсчитывается от now, иначе — от существующей даты окончания.
func NextRenewalEnd(currentEnd *time.Time, now time.Time) time.Time {
	base := now
	if currentEnd != nil && currentEnd.After(now) {
		base = *currentEnd
	}
	return AddMonth(base)
}
