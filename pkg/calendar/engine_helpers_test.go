package calendar

import (
	"strconv"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func weekdayPtr(w time.Weekday) *time.Weekday {
	return &w
}

func intPtr(i int) *int {
	return &i
}

func oneTime(id string, on time.Time) CareEvent {
	return CareEvent{Id: id, Type: VetAppointment, Title: id, EventDate: &on}
}

func recurring(id string, pattern RecurrencePattern, anchor time.Time) CareEvent {
	return CareEvent{
		Id:                  id,
		Type:                Medication,
		Title:               id,
		IsRecurring:         true,
		RecurrencePattern:   pattern,
		RecurrenceStartDate: &anchor,
	}
}

func occurrenceDates(occurrences []CalendarOccurrence) []string {
	dates := make([]string, 0, len(occurrences))
	for _, o := range occurrences {
		dates = append(dates, IsoDate(o.Date))
	}
	return dates
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
