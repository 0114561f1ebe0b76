package onboarding

import (
	"slices"
	"time"
)

type Step string

const (
	Profile          Step = "profile"
	Vaccinations     Step = "vaccinations"
	Veterinarian     Step = "veterinarian"
	EmergencyContact Step = "emergency_contact"
	Food             Step = "food"
	Routine          Step = "routine"
	CareCalendar     Step = "care_calendar"
)

// Steps in the order they are offered.
var Steps = []Step{Profile, Vaccinations, Veterinarian, EmergencyContact, Food, Routine, CareCalendar}

func ParseStep(value string) (Step, bool) {
	step := Step(value)
	return step, slices.Contains(Steps, step)
}

// Progress of one pet's onboarding. A step is either completed, skipped or still open.
type Progress struct {
	PetId     int
	Completed []Step
	Skipped   []Step
	// Dismissed means the owner asked not to be prompted again.
	Dismissed bool
	UpdatedAt time.Time
}

func NewProgress(petId int) Progress {
	return Progress{PetId: petId, Completed: []Step{}, Skipped: []Step{}}
}

// NextStep returns the first open step. There is none once every step is settled or onboarding was dismissed.
func (p Progress) NextStep() (Step, bool) {
	if p.Dismissed {
		return "", false
	}
	for _, step := range Steps {
		if !slices.Contains(p.Completed, step) && !slices.Contains(p.Skipped, step) {
			return step, true
		}
	}
	return "", false
}

func (p Progress) Done() bool {
	_, open := p.NextStep()
	return !open
}

// Complete marks the step done, also when it was skipped earlier.
func (p Progress) Complete(step Step) Progress {
	p.Skipped = slices.DeleteFunc(slices.Clone(p.Skipped), func(s Step) bool { return s == step })
	if !slices.Contains(p.Completed, step) {
		p.Completed = append(slices.Clone(p.Completed), step)
	}
	return p
}

// Skip has no effect on a completed step.
func (p Progress) Skip(step Step) Progress {
	if slices.Contains(p.Completed, step) || slices.Contains(p.Skipped, step) {
		return p
	}
	p.Skipped = append(slices.Clone(p.Skipped), step)
	return p
}
