package pet

import "time"

type Pet struct {
	Id        int
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	Microchip string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
