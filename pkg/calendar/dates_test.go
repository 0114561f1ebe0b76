package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGrid(t *testing.T) {
	t.Run("should produce complete sunday-first weeks for every month", func(t *testing.T) {
		for year := 2023; year <= 2027; year++ {
			for month := time.January; month <= time.December; month++ {
				grid := MonthGrid(year, month)

				require.NotEmpty(t, grid)
				assert.Zero(t, len(grid)%7, "%d-%02d length %d", year, month, len(grid))
				assert.Equal(t, time.Sunday, grid[0].Weekday(), "%d-%02d", year, month)
				assert.Equal(t, time.Saturday, grid[len(grid)-1].Weekday(), "%d-%02d", year, month)

				seen := map[int]int{}
				for _, d := range grid {
					if d.Year() == year && d.Month() == month {
						seen[d.Day()]++
					}
				}
				daysInMonth := date(year, month, 1).AddDate(0, 1, -1).Day()
				require.Len(t, seen, daysInMonth)
				for day, count := range seen {
					assert.Equal(t, 1, count, "%d-%02d-%02d", year, month, day)
				}
			}
		}
	})

	t.Run("should pad march 2025 with six leading and five trailing days", func(t *testing.T) {
		grid := MonthGrid(2025, time.March)

		require.Len(t, grid, 42)
		assert.Equal(t, date(2025, time.February, 23), grid[0])
		assert.Equal(t, date(2025, time.March, 1), grid[6])
		assert.Equal(t, date(2025, time.April, 5), grid[41])
	})

	t.Run("should not pad february 2015", func(t *testing.T) {
		grid := MonthGrid(2015, time.February)

		require.Len(t, grid, 28)
		assert.Equal(t, date(2015, time.February, 1), grid[0])
		assert.Equal(t, date(2015, time.February, 28), grid[27])
	})

	t.Run("should keep consecutive days", func(t *testing.T) {
		grid := MonthGrid(2024, time.February)
		for i := 1; i < len(grid); i++ {
			assert.Equal(t, 1, daysBetween(grid[i-1], grid[i]))
		}
	})
}

func TestSameDay(t *testing.T) {
	warsaw := time.FixedZone("CET", 3600)
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want bool
	}{
		{"same instant", date(2025, 3, 10), date(2025, 3, 10), true},
		{"different time of day", time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC), true},
		{"different day", date(2025, 3, 10), date(2025, 3, 11), false},
		{"different month", date(2025, 3, 10), date(2025, 4, 10), false},
		{"different year", date(2024, 3, 10), date(2025, 3, 10), false},
		{"calendar date in own location", time.Date(2025, 3, 10, 0, 30, 0, 0, warsaw), date(2025, 3, 10), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameDay(tt.a, tt.b))
		})
	}
}

func TestIsToday(t *testing.T) {
	assert.True(t, IsToday(time.Now()))
	assert.False(t, IsToday(time.Now().AddDate(0, 0, -1)))
	assert.False(t, IsToday(time.Now().AddDate(0, 0, 1)))
}

func TestDayOfWeekName(t *testing.T) {
	assert.Equal(t, "sunday", DayOfWeekName(date(2025, 3, 2)))
	assert.Equal(t, "monday", DayOfWeekName(date(2025, 3, 3)))
	assert.Equal(t, "saturday", DayOfWeekName(date(2025, 3, 8)))

	for w := time.Sunday; w <= time.Saturday; w++ {
		parsed, ok := ParseDayOfWeek(dayNames[w])
		assert.True(t, ok)
		assert.Equal(t, w, parsed)
	}
	parsed, ok := ParseDayOfWeek(" Tuesday ")
	assert.True(t, ok)
	assert.Equal(t, time.Tuesday, parsed)
	_, ok = ParseDayOfWeek("funday")
	assert.False(t, ok)
}

func TestWeekdayName_OutOfRange(t *testing.T) {
	assert.Equal(t, "tuesday", weekdayName(time.Tuesday))
	assert.Equal(t, "", weekdayName(time.Weekday(7)))
	assert.Equal(t, "", weekdayName(time.Weekday(-1)))

	assert.Nil(t, dayOfWeekValue(weekdayPtr(time.Weekday(9))))
	assert.Equal(t, "friday", *dayOfWeekValue(weekdayPtr(time.Friday)))
}
