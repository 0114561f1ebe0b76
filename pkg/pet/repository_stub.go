package pet

import (
	"context"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	pets    map[int]Pet
	userIds map[int]int // pet id -> user id
	nextId  int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		pets:    make(map[int]Pet),
		userIds: make(map[int]int),
		nextId:  1,
	}
}

func (r *RepositoryStub) CreatePet(ctx context.Context, userId int, pet Pet) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pet.Id = r.nextId
	r.nextId++
	pet.CreatedAt = time.Now()
	pet.UpdatedAt = pet.CreatedAt
	r.pets[pet.Id] = pet
	r.userIds[pet.Id] = userId
	return pet, nil
}

func (r *RepositoryStub) GetPet(ctx context.Context, userId int, id int) (Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pet, ok := r.pets[id]
	if !ok || r.userIds[id] != userId {
		return Pet{}, ErrPetNotFound
	}
	return pet, nil
}

func (r *RepositoryStub) ListPets(ctx context.Context, userId int) ([]Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pets := make([]Pet, 0)
	for id, pet := range r.pets {
		if r.userIds[id] == userId {
			pets = append(pets, pet)
		}
	}
	sort.Slice(pets, func(i, j int) bool {
		if pets[i].Name != pets[j].Name {
			return pets[i].Name < pets[j].Name
		}
		return pets[i].Id < pets[j].Id
	})
	return pets, nil
}

func (r *RepositoryStub) UpdatePet(ctx context.Context, userId int, pet Pet) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.pets[pet.Id]
	if !ok || r.userIds[pet.Id] != userId {
		return Pet{}, ErrPetNotFound
	}
	pet.CreatedAt = existing.CreatedAt
	pet.UpdatedAt = time.Now()
	r.pets[pet.Id] = pet
	return pet, nil
}

func (r *RepositoryStub) DeletePet(ctx context.Context, userId int, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok || r.userIds[id] != userId {
		return false, nil
	}
	delete(r.pets, id)
	delete(r.userIds, id)
	return true, nil
}
