package calendar_feed

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/petpassport/petpassport/internal/utils"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const (
	productId = "-//Pet Passport//Care Calendar//EN"
	uidDomain = "petpassport"
	// firstOccurrenceHorizonDays covers the longest gap between an anchor and its first
	// occurrence (a yearly leap-day event).
	firstOccurrenceHorizonDays = 4 * 366
	timedEventDuration         = time.Hour
)

type EventLister interface {
	ListEvents(ctx context.Context, petId int) ([]calendar.CareEvent, error)
}

type PetReader interface {
	GetPet(ctx context.Context, id int) (pet.Pet, error)
}

type Service struct {
	events EventLister
	pets   PetReader
	clock  utils.Clock
}

func NewService(events EventLister, pets PetReader, clock utils.Clock) *Service {
	return &Service{events: events, pets: pets, clock: clock}
}

// PetCalendar renders every care event of the pet as an iCalendar document.
func (s *Service) PetCalendar(ctx context.Context, petId int) (string, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	p, err := s.pets.GetPet(ctx, petId)
	if err != nil {
		return "", err
	}
	events, err := s.events.ListEvents(ctx, petId)
	if err != nil {
		return "", err
	}

	loc := currentUser.Location()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productId)
	cal.SetXWRCalName(p.Name + " care calendar")
	cal.SetXWRTimezone(loc.String())

	stamp := s.clock.Now().UTC()
	written := 0
	for _, event := range events {
		ok, err := addEvent(cal, event, loc, stamp)
		if err != nil {
			log.Errorf("skipping care event %s in feed: %v", event.Id, err)
			continue
		}
		if ok {
			written++
		}
	}
	log.Debugf("rendered %d of %d care events for pet %d", written, len(events), petId)
	return cal.Serialize(), nil
}

// addEvent writes one VEVENT. Events that can never occur are left out.
func addEvent(cal *ics.Calendar, event calendar.CareEvent, loc *time.Location, stamp time.Time) (bool, error) {
	var start time.Time
	var rule string
	if event.IsRecurring {
		if event.RecurrenceStartDate == nil {
			return false, nil
		}
		first, ok := calendar.NextOccurrence(event, *event.RecurrenceStartDate, firstOccurrenceHorizonDays)
		if !ok {
			return false, nil
		}
		var err error
		rule, err = RecurrenceRule(event)
		if err != nil {
			return false, err
		}
		start = first
	} else {
		if event.EventDate == nil {
			return false, nil
		}
		start = *event.EventDate
	}

	vevent := cal.AddEvent(event.Id + "@" + uidDomain)
	vevent.SetDtStampTime(stamp)
	if !event.UpdatedAt.IsZero() {
		vevent.SetModifiedAt(event.UpdatedAt.UTC())
	}
	vevent.SetSummary(event.Title)
	if event.Description != "" {
		vevent.SetDescription(event.Description)
	}
	if event.Location != "" {
		vevent.SetLocation(event.Location)
	}
	vevent.AddProperty(ics.ComponentPropertyCategories, string(event.Type))

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if event.EventTime == "" {
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
	} else {
		at, err := time.ParseInLocation("2006-01-02 15:04", calendar.IsoDate(day)+" "+event.EventTime, loc)
		if err != nil {
			return false, fmt.Errorf("invalid event time %q: %w", event.EventTime, err)
		}
		vevent.SetStartAt(at.UTC())
		vevent.SetEndAt(at.Add(timedEventDuration).UTC())
	}
	if rule != "" {
		vevent.SetProperty(ics.ComponentPropertyRrule, rule)
	}
	return true, nil
}

// RecurrenceRule translates the recurrence of event into RRULE text (without DTSTART). It is
// only equivalent to the day scan when DTSTART is the event's first occurrence.
func RecurrenceRule(event calendar.CareEvent) (string, error) {
	if event.RecurrenceStartDate == nil {
		return "", fmt.Errorf("recurring event %s has no start date", event.Id)
	}
	anchor := *event.RecurrenceStartDate
	option := rrule.ROption{Interval: 1}

	switch event.RecurrencePattern {
	case calendar.Daily:
		option.Freq = rrule.DAILY
	case calendar.Weekly, calendar.Biweekly:
		option.Freq = rrule.WEEKLY
		if event.RecurrencePattern == calendar.Biweekly {
			option.Interval = 2
		}
		weekday := anchor.Weekday()
		if event.RecurrenceDayOfWeek != nil {
			weekday = *event.RecurrenceDayOfWeek
		}
		option.Byweekday = []rrule.Weekday{toRRuleWeekday(weekday)}
	case calendar.Monthly:
		option.Freq = rrule.MONTHLY
		day := anchor.Day()
		if event.RecurrenceDayOfMonth != nil {
			day = *event.RecurrenceDayOfMonth
		}
		option.Bymonthday = []int{day}
	case calendar.Yearly:
		option.Freq = rrule.YEARLY
		option.Bymonth = []int{int(anchor.Month())}
		option.Bymonthday = []int{anchor.Day()}
	default:
		return "", fmt.Errorf("unsupported recurrence pattern %q", event.RecurrencePattern)
	}

	rule, err := rrule.NewRRule(option)
	if err != nil {
		return "", fmt.Errorf("invalid recurrence rule: %w", err)
	}
	text := rule.OrigOptions.RRuleString()
	// DTSTART is a DATE, so UNTIL has to be a DATE too (RFC 5545 3.3.10).
	if event.RecurrenceEndDate != nil {
		text += ";UNTIL=" + event.RecurrenceEndDate.Format(rrule.DateFormat)
	}
	return text, nil
}

func toRRuleWeekday(w time.Weekday) rrule.Weekday {
	switch w {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	}
	return rrule.SU
}
