package calendar

import (
	"sort"
	"time"
)

// Expand projects events onto every day of [start, end], both ends inclusive. Recurring events
// are tested day by day with OccursOn; one-time events contribute their EventDate when it falls
// inside the range. Occurrence dates are midnights in start's location and the result is
// stably sorted by date. Malformed events contribute nothing.
func Expand(events []CareEvent, start, end time.Time) []CalendarOccurrence {
	first := startOfDay(start)
	loc := first.Location()

	occurrences := make([]CalendarOccurrence, 0)
	for _, event := range events {
		if event.IsRecurring {
			for day := first; compareDays(day, end) <= 0; day = day.AddDate(0, 0, 1) {
				if OccursOn(event, day) {
					occurrences = append(occurrences, CalendarOccurrence{
						Id:          event.Id + "-" + IsoDate(day),
						Event:       event,
						Date:        day,
						IsRecurring: true,
					})
				}
			}
			continue
		}

		if event.EventDate == nil {
			continue
		}
		if compareDays(*event.EventDate, first) < 0 || compareDays(*event.EventDate, end) > 0 {
			continue
		}
		y, m, d := event.EventDate.Date()
		occurrences = append(occurrences, CalendarOccurrence{
			Id:          event.Id,
			Event:       event,
			Date:        time.Date(y, m, d, 0, 0, 0, 0, loc),
			IsRecurring: false,
		})
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Date.Before(occurrences[j].Date)
	})
	return occurrences
}
