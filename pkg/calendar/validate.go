package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidCareEvent  = errors.New("invalid care event")
	ErrCareEventNotFound = errors.New("care event not found")
	ErrInvalidRange      = errors.New("invalid date range")
)

const eventTimeLayout = "15:04"

// eventTimePattern admits zero-padded 24h times only.
var eventTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate checks that the field group selected by IsRecurring is complete and consistent.
func Validate(event CareEvent) error {
	if _, err := ParseEventType(string(event.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidCareEvent)
	}

	if !event.IsRecurring {
		if event.EventDate == nil {
			return fmt.Errorf("%w: event date is required for one-time events", ErrInvalidCareEvent)
		}
		if event.EventTime != "" {
			if !eventTimePattern.MatchString(event.EventTime) {
				return fmt.Errorf("%w: event time %q must be HH:MM", ErrInvalidCareEvent, event.EventTime)
			}
		}
		return nil
	}

	switch event.RecurrencePattern {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
	case "":
		return fmt.Errorf("%w: recurrence pattern is required for recurring events", ErrInvalidCareEvent)
	default:
		return fmt.Errorf("%w: unknown recurrence pattern %q", ErrInvalidCareEvent, event.RecurrencePattern)
	}
	if event.RecurrenceStartDate == nil {
		return fmt.Errorf("%w: recurrence start date is required for recurring events", ErrInvalidCareEvent)
	}
	if event.RecurrenceEndDate != nil && compareDays(*event.RecurrenceEndDate, *event.RecurrenceStartDate) < 0 {
		return fmt.Errorf("%w: recurrence end date is before start date", ErrInvalidCareEvent)
	}
	if event.RecurrenceDayOfWeek != nil {
		if event.RecurrencePattern != Weekly && event.RecurrencePattern != Biweekly {
			return fmt.Errorf("%w: day of week applies only to weekly and biweekly events", ErrInvalidCareEvent)
		}
		if !validWeekday(*event.RecurrenceDayOfWeek) {
			return fmt.Errorf("%w: day of week out of range", ErrInvalidCareEvent)
		}
	}
	if event.RecurrenceDayOfMonth != nil {
		if event.RecurrencePattern != Monthly {
			return fmt.Errorf("%w: day of month applies only to monthly events", ErrInvalidCareEvent)
		}
		if *event.RecurrenceDayOfMonth < 1 || *event.RecurrenceDayOfMonth > 31 {
			return fmt.Errorf("%w: day of month must be between 1 and 31", ErrInvalidCareEvent)
		}
	}
	return nil
}

// normalize clears the field group IsRecurring does not select and trims text fields.
func normalize(event CareEvent) CareEvent {
	event.Title = strings.TrimSpace(event.Title)
	event.Location = strings.TrimSpace(event.Location)
	if event.IsRecurring {
		event.EventDate = nil
		event.EventTime = ""
		return event
	}
	event.RecurrencePattern = ""
	event.RecurrenceStartDate = nil
	event.RecurrenceEndDate = nil
	event.RecurrenceDayOfWeek = nil
	event.RecurrenceDayOfMonth = nil
	return event
}
