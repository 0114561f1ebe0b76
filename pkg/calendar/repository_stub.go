package calendar

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	items   map[string]CareEvent // id -> event
	userIds map[string]int       // id -> userId
	order   []string
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:   make(map[string]CareEvent),
		userIds: make(map[string]int),
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalItems := make(map[string]CareEvent, len(r.items))
	for k, v := range r.items {
		originalItems[k] = v
	}
	originalUserIds := make(map[string]int, len(r.userIds))
	for k, v := range r.userIds {
		originalUserIds[k] = v
	}
	originalOrder := slices.Clone(r.order)
	r.mu.Unlock()

	err := fn(r)

	if err != nil {
		r.mu.Lock()
		r.items = originalItems
		r.userIds = originalUserIds
		r.order = originalOrder
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, userId int, event CareEvent) (CareEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.items[event.Id] = event
	r.userIds[event.Id] = userId
	r.order = append(r.order, event.Id)
	return event, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, userId int, petId int, id string) (CareEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.items[id]
	if !ok || r.userIds[id] != userId || event.PetId != petId {
		return CareEvent{}, ErrCareEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetPetEvents(ctx context.Context, userId int, petId int) ([]CareEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]CareEvent, 0)
	for _, id := range r.order {
		event, ok := r.items[id]
		if ok && r.userIds[id] == userId && event.PetId == petId {
			events = append(events, event)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return firstDate(events[i]).Before(firstDate(events[j]))
	})
	return events, nil
}

func (r *RepositoryStub) GetCalendarEvents(ctx context.Context, userId int, petIds []int, oneTimeFrom time.Time) ([]CareEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]CareEvent, 0)
	for _, id := range r.order {
		event, ok := r.items[id]
		if !ok || r.userIds[id] != userId {
			continue
		}
		if len(petIds) > 0 && !slices.Contains(petIds, event.PetId) {
			continue
		}
		if !event.IsRecurring && (event.EventDate == nil || compareDays(*event.EventDate, oneTimeFrom) < 0) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, userId int, event CareEvent) (CareEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[event.Id]
	if !ok || r.userIds[event.Id] != userId || existing.PetId != event.PetId {
		return CareEvent{}, ErrCareEventNotFound
	}
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now()
	r.items[event.Id] = event
	return event, nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, userId int, petId int, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.items[id]
	if !ok || r.userIds[id] != userId || event.PetId != petId {
		return false, nil
	}
	delete(r.items, id)
	delete(r.userIds, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return true, nil
}

func firstDate(event CareEvent) time.Time {
	if event.EventDate != nil {
		return *event.EventDate
	}
	if event.RecurrenceStartDate != nil {
		return *event.RecurrenceStartDate
	}
	return time.Time{}
}
