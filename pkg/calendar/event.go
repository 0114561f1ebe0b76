package calendar

import (
	"fmt"
	"time"
)

type EventType string

const (
	VetAppointment EventType = "vet_appointment"
	Grooming       EventType = "grooming"
	Medication     EventType = "medication"
	Vaccination    EventType = "vaccination"
	Training       EventType = "training"
	Other          EventType = "other"
)

var EventTypes = []EventType{VetAppointment, Grooming, Medication, Vaccination, Training, Other}

func ParseEventType(value string) (EventType, error) {
	for _, t := range EventTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidCareEvent, value)
}

// Icon returns the icon name the clients render for the event type.
func (t EventType) Icon() string {
	switch t {
	case VetAppointment:
		return "stethoscope"
	case Grooming:
		return "scissors"
	case Medication:
		return "pill"
	case Vaccination:
		return "syringe"
	case Training:
		return "graduation-cap"
	case Other:
		return "calendar"
	}
	return "calendar"
}

func (t EventType) Color() string {
	switch t {
	case VetAppointment:
		return "#3b82f6"
	case Grooming:
		return "#a855f7"
	case Medication:
		return "#ef4444"
	case Vaccination:
		return "#22c55e"
	case Training:
		return "#f59e0b"
	case Other:
		return "#6b7280"
	}
	return "#6b7280"
}

type RecurrencePattern string

const (
	Daily    RecurrencePattern = "daily"
	Weekly   RecurrencePattern = "weekly"
	Biweekly RecurrencePattern = "biweekly"
	Monthly  RecurrencePattern = "monthly"
	Yearly   RecurrencePattern = "yearly"
)

// CareEvent is a stored event definition. IsRecurring selects which field group is in use:
// EventDate/EventTime for one-time events, the Recurrence* fields otherwise.
type CareEvent struct {
	Id          string
	PetId       int
	Type        EventType
	Title       string
	Description string
	Notes       string
	Location    string

	IsRecurring bool

	EventDate *time.Time
	// EventTime is a time of day in HH:MM, empty when the event lasts all day.
	EventTime string

	RecurrencePattern    RecurrencePattern
	RecurrenceStartDate  *time.Time
	RecurrenceEndDate    *time.Time
	RecurrenceDayOfWeek  *time.Weekday
	RecurrenceDayOfMonth *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CalendarOccurrence is one event projected onto one date. It is rebuilt on every expansion.
type CalendarOccurrence struct {
	Id          string
	Event       CareEvent
	Date        time.Time
	IsRecurring bool
}
