package reminder

import (
	"context"
	"fmt"

	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Digest lists one user's care occurrences for the next Days days.
type Digest struct {
	User        user.User
	Days        int
	Occurrences []calendar.CalendarOccurrence
}

type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}

// LogNotifier writes digests to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, digest Digest) error {
	for _, occurrence := range digest.Occurrences {
		when := calendar.IsoDate(occurrence.Date)
		if occurrence.Event.EventTime != "" {
			when += " " + occurrence.Event.EventTime
		}
		log.WithFields(log.Fields{
			"user": digest.User.Username,
			"pet":  occurrence.Event.PetId,
			"type": occurrence.Event.Type,
		}).Infof("reminder: %s on %s", occurrence.Event.Title, when)
	}
	return nil
}

type UserLister interface {
	GetAllUsers(ctx context.Context) ([]user.User, error)
}

type UpcomingReader interface {
	GetUpcoming(ctx context.Context, days int, petIds []int) ([]calendar.CalendarOccurrence, error)
}

// Job builds and sends the digests of all users.
type Job struct {
	users         UserLister
	calendar      UpcomingReader
	notifier      Notifier
	lookaheadDays int
}

func NewJob(users UserLister, calendar UpcomingReader, notifier Notifier, lookaheadDays int) *Job {
	return &Job{users: users, calendar: calendar, notifier: notifier, lookaheadDays: lookaheadDays}
}

// Run sends one digest per user with upcoming occurrences and returns how many were sent.
// A failure for one user is logged and the run continues with the next one.
func (j *Job) Run(ctx context.Context) (int, error) {
	users, err := j.users.GetAllUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	sent := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		userCtx := user.WithUser(ctx, u)
		occurrences, err := j.calendar.GetUpcoming(userCtx, j.lookaheadDays, nil)
		if err != nil {
			log.Errorf("failed to compute reminder digest for user %d: %v", u.Id, err)
			continue
		}
		if len(occurrences) == 0 {
			continue
		}
		err = j.notifier.Notify(userCtx, Digest{User: u, Days: j.lookaheadDays, Occurrences: occurrences})
		if err != nil {
			log.Errorf("failed to send reminder digest to user %d: %v", u.Id, err)
			continue
		}
		sent++
	}
	log.Infof("sent %d reminder digests to %d users", sent, len(users))
	return sent, nil
}
