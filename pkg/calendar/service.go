package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petpassport/petpassport/internal/config"
	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/internal/utils"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

// PetReader resolves a pet of the current user; it fails with pet.ErrPetNotFound for pets of
// other users.
type PetReader interface {
	GetPet(ctx context.Context, id int) (pet.Pet, error)
}

// Day is one cell of a month view.
type Day struct {
	Date        time.Time
	InMonth     bool
	IsToday     bool
	Occurrences []CalendarOccurrence
}

type Service interface {
	CreateEvent(ctx context.Context, event CareEvent) (CareEvent, error)
	GetEvent(ctx context.Context, petId int, id string) (CareEvent, error)
	ListEvents(ctx context.Context, petId int) ([]CareEvent, error)
	UpdateEvent(ctx context.Context, event CareEvent) (CareEvent, error)
	DeleteEvent(ctx context.Context, petId int, id string) (bool, error)

	GetOccurrences(ctx context.Context, from, to time.Time, petIds []int) ([]CalendarOccurrence, error)
	GetMonth(ctx context.Context, year int, month time.Month, petIds []int) ([]Day, error)
	GetUpcoming(ctx context.Context, days int, petIds []int) ([]CalendarOccurrence, error)
}

type ServiceImpl struct {
	repo     Repository
	pets     PetReader
	eventBus *event_bus.EventBus
	clock    utils.Clock
	cfg      config.Calendar
}

func NewService(repo Repository, pets PetReader, eventBus *event_bus.EventBus, clock utils.Clock, cfg config.Calendar) *ServiceImpl {
	return &ServiceImpl{repo: repo, pets: pets, eventBus: eventBus, clock: clock, cfg: cfg}
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, event CareEvent) (CareEvent, error) {
	userId, err := s.ownerOf(ctx, event.PetId)
	if err != nil {
		return CareEvent{}, err
	}
	event = normalize(event)
	if err := Validate(event); err != nil {
		return CareEvent{}, err
	}
	event.Id = uuid.NewString()

	stored, err := s.repo.StoreEvent(ctx, userId, event)
	if err != nil {
		return CareEvent{}, fmt.Errorf("failed to store care event: %w", err)
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CareEventCreatedType, event_bus.CareEventCreated{
		EventId:     stored.Id,
		PetId:       stored.PetId,
		EventType:   string(stored.Type),
		IsRecurring: stored.IsRecurring,
	}))
	if err != nil {
		log.Errorf("failed to publish care event created event for %s: %v", stored.Id, err)
	}
	return stored, nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, petId int, id string) (CareEvent, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return CareEvent{}, err
	}
	if !validId(id) {
		return CareEvent{}, ErrCareEventNotFound
	}
	return s.repo.GetEvent(ctx, userId, petId, id)
}

func (s *ServiceImpl) ListEvents(ctx context.Context, petId int) ([]CareEvent, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return nil, err
	}
	return s.repo.GetPetEvents(ctx, userId, petId)
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, event CareEvent) (CareEvent, error) {
	userId, err := s.ownerOf(ctx, event.PetId)
	if err != nil {
		return CareEvent{}, err
	}
	if !validId(event.Id) {
		return CareEvent{}, ErrCareEventNotFound
	}
	event = normalize(event)
	if err := Validate(event); err != nil {
		return CareEvent{}, err
	}

	var updated CareEvent
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if _, err := repo.GetEvent(ctx, userId, event.PetId, event.Id); err != nil {
			return err
		}
		updated, err = repo.UpdateEvent(ctx, userId, event)
		return err
	})
	if err != nil {
		return CareEvent{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, petId int, id string) (bool, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return false, err
	}
	if !validId(id) {
		return false, nil
	}
	return s.repo.DeleteEvent(ctx, userId, petId, id)
}

// GetOccurrences expands the user's care events over the civil dates [from, to] in the user's timezone,
// ordered by date and then by time of day.
func (s *ServiceImpl) GetOccurrences(ctx context.Context, from, to time.Time, petIds []int) ([]CalendarOccurrence, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	loc := currentUser.Location()
	from, to = inLocation(from, loc), inLocation(to, loc)
	if compareDays(to, from) < 0 {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", ErrInvalidRange)
	}
	if daysBetween(from, to)+1 > s.cfg.MaxRangeDays {
		return nil, fmt.Errorf("%w: range longer than %d days", ErrInvalidRange, s.cfg.MaxRangeDays)
	}

	events, err := s.loadEvents(ctx, currentUser, petIds)
	if err != nil {
		return nil, err
	}
	occurrences := Expand(events, from, to)
	SortByTime(occurrences)
	return occurrences, nil
}

func (s *ServiceImpl) GetMonth(ctx context.Context, year int, month time.Month, petIds []int) ([]Day, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidRange, month)
	}
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	loc := currentUser.Location()

	grid := MonthGrid(year, month)
	for i := range grid {
		grid[i] = inLocation(grid[i], loc)
	}

	events, err := s.loadEvents(ctx, currentUser, petIds)
	if err != nil {
		return nil, err
	}
	occurrences := Expand(events, grid[0], grid[len(grid)-1])
	SortByTime(occurrences)
	byDate := GroupByDate(occurrences)

	today := utils.Today(s.clock, loc)
	days := make([]Day, 0, len(grid))
	for _, d := range grid {
		dayOccurrences := byDate[IsoDate(d)]
		if dayOccurrences == nil {
			dayOccurrences = []CalendarOccurrence{}
		}
		days = append(days, Day{
			Date:        d,
			InMonth:     d.Month() == month,
			IsToday:     SameDay(d, today),
			Occurrences: dayOccurrences,
		})
	}
	return days, nil
}

func (s *ServiceImpl) GetUpcoming(ctx context.Context, days int, petIds []int) ([]CalendarOccurrence, error) {
	if days < 0 || days+1 > s.cfg.MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidRange, days)
	}
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	events, err := s.loadEvents(ctx, currentUser, petIds)
	if err != nil {
		return nil, err
	}
	occurrences := UpcomingAt(events, s.clock.Now().In(currentUser.Location()), days)
	SortByTime(occurrences)
	return occurrences, nil
}

// loadEvents fetches every recurring event of the selected pets and the one-time events within
// the lookback window.
func (s *ServiceImpl) loadEvents(ctx context.Context, currentUser user.User, petIds []int) ([]CareEvent, error) {
	for _, petId := range petIds {
		if _, err := s.pets.GetPet(ctx, petId); err != nil {
			return nil, err
		}
	}
	today := utils.Today(s.clock, currentUser.Location())
	oneTimeFrom := today.AddDate(0, 0, -s.cfg.OneTimeLookbackDays)
	events, err := s.repo.GetCalendarEvents(ctx, currentUser.Id, petIds, civil(oneTimeFrom))
	if err != nil {
		return nil, fmt.Errorf("failed to load care events: %w", err)
	}
	log.Tracef("loaded %d care events for user %d", len(events), currentUser.Id)
	return events, nil
}

func (s *ServiceImpl) ownerOf(ctx context.Context, petId int) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.pets.GetPet(ctx, petId); err != nil {
		return 0, err
	}
	return userId, nil
}

// inLocation keeps the calendar date of d and moves it to midnight in loc.
func inLocation(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func validId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
