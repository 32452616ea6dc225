package activities

import "time"

// DayStart es la medianoche local del día de t.
func DayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayBounds devuelve [inicio, inicio del día siguiente). Con AddDate el día
// siguiente se calcula en calendario, así que los días de 23/25h por DST cuentan bien.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DayStart(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// NextStreak decide la racha después de guardar una actividad nueva.
// todayCount incluye la actividad recién guardada; lastBefore es la última
// actividad anterior al día de hoy (nil si no hay).
// Devuelve el valor nuevo y si hay que persistirlo.
func NextStreak(current, todayCount int, lastBefore *time.Time, now time.Time, loc *time.Location) (int, bool) {
	if todayCount != 1 {
		return current, false
	}
	if lastBefore == nil {
		return 1, true
	}

	today := DayStart(now, loc)
	// reloj atrasado o dato raro: la "anterior" cae hoy o en el futuro
	if !lastBefore.Before(today) {
		return 1, true
	}
	if DayStart(*lastBefore, loc).Equal(today.AddDate(0, 0, -1)) {
		if current < 0 {
			current = 0
		}
		return current + 1, true
	}
	return 1, true
}
