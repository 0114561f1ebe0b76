package calendar

import "time"

// OccursOn reports whether a recurring event has an occurrence on date. One-time events and
// recurring events without a pattern or anchor never match here; Expand handles one-time events.
func OccursOn(event CareEvent, date time.Time) bool {
	if !event.IsRecurring || event.RecurrencePattern == "" || event.RecurrenceStartDate == nil {
		return false
	}
	anchor := *event.RecurrenceStartDate
	if compareDays(date, anchor) < 0 {
		return false
	}
	if event.RecurrenceEndDate != nil && compareDays(date, *event.RecurrenceEndDate) > 0 {
		return false
	}

	switch event.RecurrencePattern {
	case Daily:
		return true
	case Weekly:
		return date.Weekday() == targetWeekday(event)
	case Biweekly:
		if date.Weekday() != targetWeekday(event) {
			return false
		}
		return (daysBetween(anchor, date)/7)%2 == 0
	case Monthly:
		// Months shorter than the target day get no occurrence.
		return date.Day() == targetDayOfMonth(event)
	case Yearly:
		return date.Month() == anchor.Month() && date.Day() == anchor.Day()
	}
	return false
}

func targetWeekday(event CareEvent) time.Weekday {
	if event.RecurrenceDayOfWeek != nil {
		return *event.RecurrenceDayOfWeek
	}
	return event.RecurrenceStartDate.Weekday()
}

func targetDayOfMonth(event CareEvent) int {
	if event.RecurrenceDayOfMonth != nil {
		return *event.RecurrenceDayOfMonth
	}
	return event.RecurrenceStartDate.Day()
}
