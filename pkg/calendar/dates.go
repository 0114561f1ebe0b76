package calendar

import (
	"strings"
	"time"
)

const isoDateLayout = time.DateOnly

var dayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// MonthGrid returns the days shown in a Sunday-first month view: the days of the month padded
// with the tail of the previous month and the head of the next one to whole weeks.
func MonthGrid(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday())

	days := make([]time.Time, 0, 42)
	for i := leading; i > 0; i-- {
		days = append(days, first.AddDate(0, 0, -i))
	}
	for d := 0; d < daysInMonth; d++ {
		days = append(days, first.AddDate(0, 0, d))
	}
	trailing := (7 - len(days)%7) % 7
	last := days[len(days)-1]
	for i := 1; i <= trailing; i++ {
		days = append(days, last.AddDate(0, 0, i))
	}
	return days
}

// SameDay compares calendar dates, ignoring time of day and location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsToday(d time.Time) bool {
	return SameDay(d, time.Now().In(d.Location()))
}

func DayOfWeekName(d time.Time) string {
	return dayNames[d.Weekday()]
}

func validWeekday(w time.Weekday) bool {
	return w >= time.Sunday && w <= time.Saturday
}

// weekdayName is the lower-case name of w, or "" when w is not a weekday.
func weekdayName(w time.Weekday) string {
	if !validWeekday(w) {
		return ""
	}
	return dayNames[w]
}

func ParseDayOfWeek(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dayNames {
		if n == name {
			return time.Weekday(i), true
		}
	}
	return time.Sunday, false
}

func IsoDate(d time.Time) string {
	return d.Format(isoDateLayout)
}

// startOfDay keeps the location of d.
func startOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// civil maps d to UTC midnight of its calendar date so that dates from different
// locations compare and subtract by whole days.
func civil(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func compareDays(a, b time.Time) int {
	return civil(a).Compare(civil(b))
}

func daysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}
