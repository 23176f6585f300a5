package services

import "time"

const dayLayout = "2006-01-02"

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Streak counts consecutive calendar days in loc, ending today, that have at
// least one check-in. Several check-ins on one day count once and days after
// today are ignored.
func Streak(timestamps []time.Time, now time.Time, loc *time.Location) int {
	if len(timestamps) == 0 {
		return 0
	}
	today := startOfDay(now, loc)
	days := make(map[string]struct{}, len(timestamps))
	for _, ts := range timestamps {
		d := startOfDay(ts, loc)
		if d.After(today) {
			continue
		}
		days[d.Format(dayLayout)] = struct{}{}
	}

	streak := 0
	for {
		cursor := time.Date(today.Year(), today.Month(), today.Day()-streak, 0, 0, 0, 0, today.Location())
		if _, ok := days[cursor.Format(dayLayout)]; !ok {
			return streak
		}
		streak++
	}
}
