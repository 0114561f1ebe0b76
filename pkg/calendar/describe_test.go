package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribeRecurrence(t *testing.T) {
	weeklyExplicit := recurring("w", Weekly, date(2025, 3, 5))
	weeklyExplicit.RecurrenceDayOfWeek = weekdayPtr(time.Tuesday)
	biweekly := recurring("bw", Biweekly, date(2025, 3, 5))
	biweekly.RecurrenceDayOfWeek = weekdayPtr(time.Tuesday)
	monthly := recurring("m", Monthly, date(2025, 3, 5))
	monthly.RecurrenceDayOfMonth = intPtr(15)
	weeklyOutOfRange := recurring("w", Weekly, date(2025, 3, 5))
	weeklyOutOfRange.RecurrenceDayOfWeek = weekdayPtr(time.Weekday(7))
	biweeklyNegative := recurring("bw", Biweekly, date(2025, 3, 5))
	biweeklyNegative.RecurrenceDayOfWeek = weekdayPtr(time.Weekday(-1))

	tests := []struct {
		name  string
		event CareEvent
		want  string
	}{
		{"daily", recurring("d", Daily, date(2025, 3, 5)), "Every day"},
		{"weekly from anchor", recurring("w", Weekly, date(2025, 3, 4)), "Every Tuesday"},
		{"weekly explicit", weeklyExplicit, "Every Tuesday"},
		{"biweekly", biweekly, "Every other Tuesday"},
		{"monthly explicit", monthly, "15th of every month"},
		{"monthly from anchor", recurring("m", Monthly, date(2025, 3, 22)), "22nd of every month"},
		{"monthly on 1st", recurring("m", Monthly, date(2025, 3, 1)), "1st of every month"},
		{"yearly", recurring("y", Yearly, date(2025, 3, 15)), "Every year on March 15"},
		{"one-time", oneTime("o", date(2025, 3, 15)), ""},
		{"unknown pattern", recurring("u", "hourly", date(2025, 3, 15)), ""},
		{"no anchor", CareEvent{IsRecurring: true, RecurrencePattern: Daily}, ""},
		{"weekly day out of range", weeklyOutOfRange, ""},
		{"biweekly negative day", biweeklyNegative, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeRecurrence(tt.event))
		})
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 10: "10th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 31: "31st",
		101: "101st", 111: "111th", 112: "112th",
	}
	for n, want := range cases {
		assert.Equal(t, want, Ordinal(n))
	}
}

func TestEventTypeLookups(t *testing.T) {
	for _, eventType := range EventTypes {
		parsed, err := ParseEventType(string(eventType))
		assert.NoError(t, err)
		assert.Equal(t, eventType, parsed)
		assert.NotEmpty(t, eventType.Icon())
		assert.Regexp(t, `^#[0-9a-f]{6}$`, eventType.Color())
	}

	_, err := ParseEventType("surgery")
	assert.ErrorIs(t, err, ErrInvalidCareEvent)
}
