package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/petpassport/petpassport/internal/config"
	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/internal/utils"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	digests []Digest
	failFor int
}

func (n *recordingNotifier) Notify(ctx context.Context, digest Digest) error {
	if digest.User.Id == n.failFor {
		return errors.New("mailbox full")
	}
	n.digests = append(n.digests, digest)
	return nil
}

type failingCalendar struct {
	UpcomingReader
	failFor int
}

func (c failingCalendar) GetUpcoming(ctx context.Context, days int, petIds []int) ([]calendar.CalendarOccurrence, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current.Id == c.failFor {
		return nil, errors.New("database unavailable")
	}
	return c.UpcomingReader.GetUpcoming(ctx, days, petIds)
}

type jobFixture struct {
	users    *user.UserServiceImpl
	pets     *pet.ServiceImpl
	calendar *calendar.ServiceImpl
}

func setupJobTest(t *testing.T) jobFixture {
	t.Helper()
	eventBus := event_bus.NewEventBus()
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))
	pets := pet.NewService(pet.NewRepositoryStub(), eventBus)
	return jobFixture{
		users: user.NewUserService(user.NewStubUserRepository()),
		pets:  pets,
		calendar: calendar.NewService(calendar.NewRepositoryStub(), pets, eventBus, clock, config.Calendar{
			OneTimeLookbackDays: 365,
			MaxRangeDays:        400,
			UpcomingDays:        30,
		}),
	}
}

// addOwnerWithEvent creates a user with one pet and a one-time event on the given date.
func (f jobFixture) addOwnerWithEvent(t *testing.T, username string, on time.Time) user.User {
	t.Helper()
	owner, err := f.users.CreateUser(context.Background(), user.User{Username: username})
	require.NoError(t, err)
	ctx := user.WithUser(context.Background(), owner)
	p, err := f.pets.CreatePet(ctx, pet.Pet{Name: "Pet of " + username})
	require.NoError(t, err)
	_, err = f.calendar.CreateEvent(ctx, calendar.CareEvent{
		PetId:     p.Id,
		Type:      calendar.Medication,
		Title:     "Heartworm pill",
		EventDate: &on,
	})
	require.NoError(t, err)
	return owner
}

func TestJob_Run(t *testing.T) {
	t.Run("should send digest only to users with upcoming occurrences", func(t *testing.T) {
		// given
		f := setupJobTest(t)
		alice := f.addOwnerWithEvent(t, "alice", time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
		f.addOwnerWithEvent(t, "bob", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC))
		notifier := &recordingNotifier{}
		job := NewJob(f.users, f.calendar, notifier, 1)

		// when
		sent, err := job.Run(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, notifier.digests, 1)
		assert.Equal(t, alice.Id, notifier.digests[0].User.Id)
		assert.Equal(t, 1, notifier.digests[0].Days)
		require.Len(t, notifier.digests[0].Occurrences, 1)
		assert.Equal(t, "Heartworm pill", notifier.digests[0].Occurrences[0].Event.Title)
	})

	t.Run("should continue after failure for one user", func(t *testing.T) {
		// given
		f := setupJobTest(t)
		tomorrow := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
		alice := f.addOwnerWithEvent(t, "alice", tomorrow)
		bob := f.addOwnerWithEvent(t, "bob", tomorrow)
		carol := f.addOwnerWithEvent(t, "carol", tomorrow)
		notifier := &recordingNotifier{failFor: carol.Id}
		job := NewJob(f.users, failingCalendar{UpcomingReader: f.calendar, failFor: alice.Id}, notifier, 1)

		// when
		sent, err := job.Run(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, notifier.digests, 1)
		assert.Equal(t, bob.Id, notifier.digests[0].User.Id)
	})

	t.Run("should stop when context is cancelled", func(t *testing.T) {
		// given
		f := setupJobTest(t)
		f.addOwnerWithEvent(t, "alice", time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		sent, err := NewJob(f.users, f.calendar, &recordingNotifier{}, 1).Run(ctx)

		// then
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, sent)
	})
}

func TestLogNotifier_Notify(t *testing.T) {
	on := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	err := LogNotifier{}.Notify(context.Background(), Digest{
		User: user.User{Username: "alice"},
		Days: 1,
		Occurrences: []calendar.CalendarOccurrence{{
			Id:   "e1",
			Date: on,
			Event: calendar.CareEvent{
				Id:        "e1",
				Type:      calendar.VetAppointment,
				Title:     "Checkup",
				EventDate: &on,
				EventTime: "09:30",
			},
		}},
	})
	assert.NoError(t, err)
}

func TestNewScheduler(t *testing.T) {
	t.Run("should accept standard cron expression", func(t *testing.T) {
		scheduler, err := NewScheduler("0 7 * * *", NewJob(nil, nil, LogNotifier{}, 1))

		require.NoError(t, err)
		next := scheduler.Next()
		assert.False(t, next.IsZero())
		assert.Equal(t, 7, next.Hour())
		assert.Equal(t, 0, next.Minute())
	})

	t.Run("should reject malformed expression", func(t *testing.T) {
		_, err := NewScheduler("every morning", NewJob(nil, nil, LogNotifier{}, 1))

		assert.Error(t, err)
	})

	t.Run("should start and stop", func(t *testing.T) {
		scheduler, err := NewScheduler("0 7 * * *", NewJob(nil, nil, LogNotifier{}, 1))
		require.NoError(t, err)

		scheduler.Start()
		ctx := scheduler.Stop()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
	})
}
