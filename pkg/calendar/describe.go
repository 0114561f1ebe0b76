package calendar

import (
	"fmt"
	"strings"
)

// DescribeRecurrence renders a recurring event's schedule, e.g. "Every other Tuesday" or
// "15th of every month". Non-recurring and incomplete events yield an empty string.
func DescribeRecurrence(event CareEvent) string {
	if !event.IsRecurring || event.RecurrenceStartDate == nil {
		return ""
	}
	switch event.RecurrencePattern {
	case Daily:
		return "Every day"
	case Weekly, Biweekly:
		name := weekdayName(targetWeekday(event))
		if name == "" {
			return ""
		}
		title := strings.ToUpper(name[:1]) + name[1:]
		if event.RecurrencePattern == Biweekly {
			return "Every other " + title
		}
		return "Every " + title
	case Monthly:
		return Ordinal(targetDayOfMonth(event)) + " of every month"
	case Yearly:
		anchor := *event.RecurrenceStartDate
		return fmt.Sprintf("Every year on %s %d", anchor.Month(), anchor.Day())
	}
	return ""
}

// Ordinal formats n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 12th, 13th, 21st...
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
