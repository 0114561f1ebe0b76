package share

import (
	"time"

	"github.com/petpassport/petpassport/pkg/calendar"
)

// Visibility selects what a share link reveals beyond the pet's name, species and breed.
type Visibility struct {
	ShowBirthDate    bool
	ShowMicrochip    bool
	ShowNotes        bool
	ShowCalendar     bool
	ShowEventDetails bool
}

type Link struct {
	Id         int
	PetId      int
	Token      string
	Visibility Visibility
	CreatedAt  time.Time
	ExpiresAt  *time.Time
}

func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// PublicView is what an anonymous visitor of a share link sees.
type PublicView struct {
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	Microchip string
	Notes     string
	Upcoming  []calendar.CalendarOccurrence
	ExpiresAt *time.Time
}
