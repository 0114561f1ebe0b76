package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_NextStep(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		expected Step
		open     bool
	}{
		{name: "fresh progress starts with profile", progress: NewProgress(1), expected: Profile, open: true},
		{
			name:     "skipped steps are passed over",
			progress: NewProgress(1).Complete(Profile).Skip(Vaccinations),
			expected: Veterinarian,
			open:     true,
		},
		{
			name:     "steps completed out of order",
			progress: NewProgress(1).Complete(CareCalendar).Complete(Profile),
			expected: Vaccinations,
			open:     true,
		},
		{
			name:     "dismissed has no next step",
			progress: Progress{PetId: 1, Dismissed: true},
			open:     false,
		},
		{
			name: "all settled",
			progress: NewProgress(1).Complete(Profile).Skip(Vaccinations).Skip(Veterinarian).
				Skip(EmergencyContact).Complete(Food).Complete(Routine).Complete(CareCalendar),
			open: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, open := tt.progress.NextStep()
			assert.Equal(t, tt.open, open)
			assert.Equal(t, tt.expected, next)
			assert.Equal(t, !tt.open, tt.progress.Done())
		})
	}
}

func TestProgress_CompleteAndSkip(t *testing.T) {
	t.Run("should move skipped step to completed", func(t *testing.T) {
		progress := NewProgress(1).Skip(Food).Complete(Food)

		assert.Equal(t, []Step{Food}, progress.Completed)
		assert.Empty(t, progress.Skipped)
	})

	t.Run("should not skip completed step", func(t *testing.T) {
		progress := NewProgress(1).Complete(Food).Skip(Food)

		assert.Equal(t, []Step{Food}, progress.Completed)
		assert.Empty(t, progress.Skipped)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		progress := NewProgress(1).Complete(Food).Complete(Food).Skip(Routine).Skip(Routine)

		assert.Equal(t, []Step{Food}, progress.Completed)
		assert.Equal(t, []Step{Routine}, progress.Skipped)
	})

	t.Run("should not modify the original", func(t *testing.T) {
		original := NewProgress(1).Complete(Profile)

		_ = original.Complete(Food)

		assert.Equal(t, []Step{Profile}, original.Completed)
	})
}

func TestParseStep(t *testing.T) {
	step, ok := ParseStep("emergency_contact")
	assert.True(t, ok)
	assert.Equal(t, EmergencyContact, step)

	_, ok = ParseStep("insurance")
	assert.False(t, ok)
}
