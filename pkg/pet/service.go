package pet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrPetDataInvalid = errors.New("invalid pet data")

type Service interface {
	CreatePet(ctx context.Context, pet Pet) (Pet, error)
	GetPet(ctx context.Context, id int) (Pet, error)
	ListPets(ctx context.Context) ([]Pet, error)
	UpdatePet(ctx context.Context, pet Pet) (Pet, error)
	DeletePet(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) CreatePet(ctx context.Context, pet Pet) (Pet, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Pet{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := normalize(&pet); err != nil {
		return Pet{}, err
	}

	created, err := s.repo.CreatePet(ctx, userId, pet)
	if err != nil {
		return Pet{}, err
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.PetCreatedType, event_bus.PetCreated{
		PetId: created.Id,
		Name:  created.Name,
	}))
	if err != nil {
		// The pet is stored; subscribers only derive state from it.
		log.Errorf("failed to publish pet created event for pet %d: %v", created.Id, err)
	}
	return created, nil
}

func (s *ServiceImpl) GetPet(ctx context.Context, id int) (Pet, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Pet{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetPet(ctx, userId, id)
}

func (s *ServiceImpl) ListPets(ctx context.Context) ([]Pet, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListPets(ctx, userId)
}

func (s *ServiceImpl) UpdatePet(ctx context.Context, pet Pet) (Pet, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Pet{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := normalize(&pet); err != nil {
		return Pet{}, err
	}
	return s.repo.UpdatePet(ctx, userId, pet)
}

func (s *ServiceImpl) DeletePet(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.DeletePet(ctx, userId, id)
}

func normalize(pet *Pet) error {
	pet.Name = strings.TrimSpace(pet.Name)
	if pet.Name == "" {
		return fmt.Errorf("%w: name is required", ErrPetDataInvalid)
	}
	pet.Species = strings.TrimSpace(pet.Species)
	pet.Breed = strings.TrimSpace(pet.Breed)
	pet.Microchip = strings.TrimSpace(pet.Microchip)
	return nil
}
