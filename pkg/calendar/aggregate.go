package calendar

import (
	"sort"
	"time"
)

func ForDay(occurrences []CalendarOccurrence, date time.Time) []CalendarOccurrence {
	result := make([]CalendarOccurrence, 0)
	for _, o := range occurrences {
		if SameDay(o.Date, date) {
			result = append(result, o)
		}
	}
	return result
}

// Upcoming expands events from today's midnight to the same midnight plus days.
func Upcoming(events []CareEvent, days int) []CalendarOccurrence {
	return UpcomingAt(events, time.Now(), days)
}

func UpcomingAt(events []CareEvent, now time.Time, days int) []CalendarOccurrence {
	today := startOfDay(now)
	return Expand(events, today, today.AddDate(0, 0, days))
}

// GroupByDate buckets occurrences by ISO date. Each bucket keeps the input order.
func GroupByDate(occurrences []CalendarOccurrence) map[string][]CalendarOccurrence {
	groups := make(map[string][]CalendarOccurrence)
	for _, o := range occurrences {
		key := IsoDate(o.Date)
		groups[key] = append(groups[key], o)
	}
	return groups
}

// SortByTime orders same-day occurrences by EventTime, all-day occurrences first.
// The date order produced by Expand is kept.
func SortByTime(occurrences []CalendarOccurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if !SameDay(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		return minuteOfDay(a.Event.EventTime) < minuteOfDay(b.Event.EventTime)
	})
}

// minuteOfDay is -1 for all-day events. Unparseable times sort after every valid one.
func minuteOfDay(eventTime string) int {
	if eventTime == "" {
		return -1
	}
	at, err := time.Parse(eventTimeLayout, eventTime)
	if err != nil {
		return 24 * 60
	}
	return at.Hour()*60 + at.Minute()
}

// NextOccurrence finds the first date on or after from on which event occurs, looking at most
// horizonDays ahead for recurring events.
func NextOccurrence(event CareEvent, from time.Time, horizonDays int) (time.Time, bool) {
	from = startOfDay(from)
	if !event.IsRecurring {
		if event.EventDate == nil || compareDays(*event.EventDate, from) < 0 {
			return time.Time{}, false
		}
		y, m, d := event.EventDate.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, from.Location()), true
	}
	if event.RecurrenceStartDate == nil {
		return time.Time{}, false
	}
	if compareDays(*event.RecurrenceStartDate, from) > 0 {
		y, m, d := event.RecurrenceStartDate.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	}
	for i := 0; i <= horizonDays; i++ {
		day := from.AddDate(0, 0, i)
		if event.RecurrenceEndDate != nil && compareDays(day, *event.RecurrenceEndDate) > 0 {
			break
		}
		if OccursOn(event, day) {
			return day, true
		}
	}
	return time.Time{}, false
}
