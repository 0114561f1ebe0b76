package onboarding

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu    sync.RWMutex
	items map[int]Progress
	// txMu stands in for the row lock: transactions run one at a time.
	txMu sync.Mutex
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{items: make(map[int]Progress)}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	original := maps.Clone(r.items)
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.items = original
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) LockProgress(ctx context.Context, userId int, petId int) (Progress, error) {
	return r.GetProgress(ctx, userId, petId)
}

func (r *RepositoryStub) GetProgress(ctx context.Context, userId int, petId int) (Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	progress, ok := r.items[petId]
	if !ok {
		return NewProgress(petId), nil
	}
	return progress, nil
}

func (r *RepositoryStub) SaveProgress(ctx context.Context, userId int, progress Progress) (Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress.Completed = slices.Clone(progress.Completed)
	progress.Skipped = slices.Clone(progress.Skipped)
	progress.UpdatedAt = time.Now()
	r.items[progress.PetId] = progress
	return progress, nil
}
