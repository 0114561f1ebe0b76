package calendar_feed

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/petpassport/petpassport/internal/config"
	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/internal/utils"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

const icsDate = "20060102"

type feedFixture struct {
	ctx      context.Context
	feed     *Service
	calendar *calendar.ServiceImpl
	petId    int
}

func setupFeedTest(t *testing.T) feedFixture {
	t.Helper()
	eventBus := event_bus.NewEventBus()
	pets := pet.NewService(pet.NewRepositoryStub(), eventBus)
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	calendarService := calendar.NewService(calendar.NewRepositoryStub(), pets, eventBus, clock, config.Calendar{
		OneTimeLookbackDays: 365, MaxRangeDays: 400, UpcomingDays: 30,
	})
	ctx := user.WithUser(context.Background(), user.User{Id: 1, Settings: user.Settings{Timezone: "Europe/Warsaw"}})
	luna, err := pets.CreatePet(ctx, pet.Pet{Name: "Luna"})
	require.NoError(t, err)
	return feedFixture{
		ctx:      ctx,
		feed:     NewService(calendarService, pets, clock),
		calendar: calendarService,
		petId:    luna.Id,
	}
}

func (f feedFixture) create(t *testing.T, event calendar.CareEvent) calendar.CareEvent {
	t.Helper()
	event.PetId = f.petId
	created, err := f.calendar.CreateEvent(f.ctx, event)
	require.NoError(t, err)
	return created
}

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func weekday(w time.Weekday) *time.Weekday {
	return &w
}

func dayOfMonth(d int) *int {
	return &d
}

func findEvent(t *testing.T, cal *ics.Calendar, id string) *ics.VEvent {
	t.Helper()
	for _, e := range cal.Events() {
		if e.Id() == id+"@"+uidDomain {
			return e
		}
	}
	require.Failf(t, "event not found", "no VEVENT for %s", id)
	return nil
}

func TestService_PetCalendar(t *testing.T) {
	// given
	f := setupFeedTest(t)
	allDay := f.create(t, calendar.CareEvent{Type: calendar.Grooming, Title: "Bath", EventDate: day(2025, 3, 10)})
	timed := f.create(t, calendar.CareEvent{
		Type: calendar.VetAppointment, Title: "Check-up", EventDate: day(2025, 3, 12), EventTime: "09:30", Location: "Clinic",
	})
	biweekly := f.create(t, calendar.CareEvent{
		Type: calendar.Medication, Title: "Pill", IsRecurring: true, RecurrencePattern: calendar.Biweekly,
		RecurrenceStartDate: day(2025, 3, 5), RecurrenceDayOfWeek: weekday(time.Monday),
	})
	monthly := f.create(t, calendar.CareEvent{
		Type: calendar.Other, Title: "Flea treatment", IsRecurring: true, RecurrencePattern: calendar.Monthly,
		RecurrenceStartDate: day(2025, 2, 1), RecurrenceEndDate: day(2025, 12, 31), RecurrenceDayOfMonth: dayOfMonth(31),
	})
	f.create(t, calendar.CareEvent{
		Type: calendar.Other, Title: "Never", IsRecurring: true, RecurrencePattern: calendar.Monthly,
		RecurrenceStartDate: day(2025, 4, 1), RecurrenceEndDate: day(2025, 4, 30), RecurrenceDayOfMonth: dayOfMonth(31),
	})

	// when
	body, err := f.feed.PetCalendar(f.ctx, f.petId)
	require.NoError(t, err)
	cal, err := ics.ParseCalendar(strings.NewReader(body))
	require.NoError(t, err)

	// then
	assert.Len(t, cal.Events(), 4, "events without occurrences are omitted")
	assert.Contains(t, body, "X-WR-CALNAME:Luna care calendar")

	allDayEvent := findEvent(t, cal, allDay.Id)
	assert.Equal(t, "20250310", allDayEvent.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20250311", allDayEvent.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "Bath", allDayEvent.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Nil(t, allDayEvent.GetProperty(ics.ComponentPropertyRrule))

	timedEvent := findEvent(t, cal, timed.Id)
	assert.Equal(t, "20250312T083000Z", timedEvent.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20250312T093000Z", timedEvent.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "Clinic", timedEvent.GetProperty(ics.ComponentPropertyLocation).Value)

	biweeklyEvent := findEvent(t, cal, biweekly.Id)
	assert.Equal(t, "20250310", biweeklyEvent.GetProperty(ics.ComponentPropertyDtStart).Value, "starts at first occurrence, not anchor")
	rule := biweeklyEvent.GetProperty(ics.ComponentPropertyRrule).Value
	assert.Contains(t, rule, "FREQ=WEEKLY")
	assert.Contains(t, rule, "INTERVAL=2")
	assert.Contains(t, rule, "BYDAY=MO")

	monthlyEvent := findEvent(t, cal, monthly.Id)
	assert.Equal(t, "20250331", monthlyEvent.GetProperty(ics.ComponentPropertyDtStart).Value)
	monthlyRule := monthlyEvent.GetProperty(ics.ComponentPropertyRrule).Value
	assert.Contains(t, monthlyRule, "BYMONTHDAY=31")
	assert.Contains(t, monthlyRule, "UNTIL=20251231")
	assert.NotContains(t, monthlyRule, "UNTIL=20251231T")
}

func TestService_PetCalendarUnknownPet(t *testing.T) {
	f := setupFeedTest(t)

	_, err := f.feed.PetCalendar(f.ctx, 999)

	assert.ErrorIs(t, err, pet.ErrPetNotFound)
}

// A client expanding the published RRULE from DTSTART must see the same dates as the day scan.
func TestRecurrenceRule_MatchesExpansion(t *testing.T) {
	rangeStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)

	events := map[string]calendar.CareEvent{
		"daily until": {IsRecurring: true, RecurrencePattern: calendar.Daily,
			RecurrenceStartDate: day(2025, 1, 10), RecurrenceEndDate: day(2025, 4, 2)},
		"weekly from anchor": {IsRecurring: true, RecurrencePattern: calendar.Weekly,
			RecurrenceStartDate: day(2025, 3, 5)},
		"biweekly on other weekday": {IsRecurring: true, RecurrencePattern: calendar.Biweekly,
			RecurrenceStartDate: day(2025, 3, 5), RecurrenceDayOfWeek: weekday(time.Tuesday)},
		"biweekly before anchor weekday": {IsRecurring: true, RecurrencePattern: calendar.Biweekly,
			RecurrenceStartDate: day(2025, 3, 5), RecurrenceDayOfWeek: weekday(time.Sunday)},
		"monthly on 30th": {IsRecurring: true, RecurrencePattern: calendar.Monthly,
			RecurrenceStartDate: day(2024, 1, 15), RecurrenceDayOfMonth: dayOfMonth(30)},
		"yearly leap day": {IsRecurring: true, RecurrencePattern: calendar.Yearly,
			RecurrenceStartDate: day(2024, 2, 29)},
	}

	for name, event := range events {
		t.Run(name, func(t *testing.T) {
			// given
			first, ok := calendar.NextOccurrence(event, *event.RecurrenceStartDate, firstOccurrenceHorizonDays)
			require.True(t, ok)
			text, err := RecurrenceRule(event)
			require.NoError(t, err)
			rule, err := rrule.StrToRRule(text)
			require.NoError(t, err)
			rule.DTStart(first)

			expected := make([]string, 0)
			for _, d := range rule.Between(rangeStart, rangeEnd, true) {
				expected = append(expected, d.Format(icsDate))
			}

			// when
			actual := make([]string, 0)
			for _, o := range calendar.Expand([]calendar.CareEvent{event}, rangeStart, rangeEnd) {
				actual = append(actual, o.Date.Format(icsDate))
			}

			// then
			assert.Equal(t, expected, actual)
		})
	}
}

func TestRecurrenceRule_RejectsUnknownPattern(t *testing.T) {
	_, err := RecurrenceRule(calendar.CareEvent{IsRecurring: true, RecurrencePattern: "hourly", RecurrenceStartDate: day(2025, 1, 1)})
	assert.Error(t, err)

	_, err = RecurrenceRule(calendar.CareEvent{IsRecurring: true, RecurrencePattern: calendar.Daily})
	assert.Error(t, err)
}

func TestRecurrenceRule_UntilIsDateValue(t *testing.T) {
	// given
	event := calendar.CareEvent{IsRecurring: true, RecurrencePattern: calendar.Weekly,
		RecurrenceStartDate: day(2025, 4, 1), RecurrenceEndDate: day(2025, 4, 29)}

	// when
	text, err := RecurrenceRule(event)

	// then
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text, ";UNTIL=20250429"), text)
	rule, err := rrule.StrToRRule(text)
	require.NoError(t, err)
	rule.DTStart(*event.RecurrenceStartDate)
	occurrences := rule.All()
	require.Len(t, occurrences, 5)
	assert.Equal(t, "20250429", occurrences[4].Format(icsDate))
}
