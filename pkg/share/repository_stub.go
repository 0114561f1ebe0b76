package share

import (
	"context"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	links   map[int]Link
	userIds map[int]int // link id -> user id
	nextId  int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{links: make(map[int]Link), userIds: make(map[int]int), nextId: 1}
}

func (r *RepositoryStub) CreateLink(ctx context.Context, userId int, link Link) (Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link.Id = r.nextId
	r.nextId++
	link.CreatedAt = time.Now()
	r.links[link.Id] = link
	r.userIds[link.Id] = userId
	return link, nil
}

func (r *RepositoryStub) ListLinks(ctx context.Context, userId int, petId int) ([]Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	links := make([]Link, 0)
	for id := 1; id < r.nextId; id++ {
		link, ok := r.links[id]
		if ok && r.userIds[id] == userId && link.PetId == petId {
			links = append(links, link)
		}
	}
	return links, nil
}

func (r *RepositoryStub) UpdateLink(ctx context.Context, userId int, link Link) (Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.links[link.Id]
	if !ok || r.userIds[link.Id] != userId || existing.PetId != link.PetId {
		return Link{}, ErrShareLinkNotFound
	}
	existing.Visibility = link.Visibility
	existing.ExpiresAt = link.ExpiresAt
	r.links[link.Id] = existing
	return existing, nil
}

func (r *RepositoryStub) DeleteLink(ctx context.Context, userId int, petId int, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok || r.userIds[id] != userId || link.PetId != petId {
		return false, nil
	}
	delete(r.links, id)
	delete(r.userIds, id)
	return true, nil
}

func (r *RepositoryStub) GetLinkByToken(ctx context.Context, token string) (Link, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, link := range r.links {
		if link.Token == token {
			return link, r.userIds[id], nil
		}
	}
	return Link{}, 0, ErrShareLinkNotFound
}
