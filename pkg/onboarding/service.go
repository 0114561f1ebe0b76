package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownStep = errors.New("unknown onboarding step")

type PetReader interface {
	GetPet(ctx context.Context, id int) (pet.Pet, error)
}

type Service interface {
	GetProgress(ctx context.Context, petId int) (Progress, error)
	CompleteStep(ctx context.Context, petId int, step Step) (Progress, error)
	SkipStep(ctx context.Context, petId int, step Step) (Progress, error)
	SetDismissed(ctx context.Context, petId int, dismissed bool) (Progress, error)
}

type ServiceImpl struct {
	repo Repository
	pets PetReader
}

// NewService creates the service and subscribes it to pet and care event creation, which settle
// the profile and care calendar steps.
func NewService(repo Repository, pets PetReader, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, pets: pets}
	event_bus.SubscribeTyped[event_bus.PetCreated](
		eventBus,
		event_bus.PetCreatedType,
		func(e event_bus.EventT[event_bus.PetCreated]) error {
			log.Debugf("received pet created event: %v", e.Data)
			if _, err := service.CompleteStep(e.Context(), e.Data.PetId, Profile); err != nil {
				log.Errorf("failed to start onboarding of pet %d: %v", e.Data.PetId, err)
				return err
			}
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.CareEventCreated](
		eventBus,
		event_bus.CareEventCreatedType,
		func(e event_bus.EventT[event_bus.CareEventCreated]) error {
			log.Debugf("received care event created event: %v", e.Data)
			if _, err := service.CompleteStep(e.Context(), e.Data.PetId, CareCalendar); err != nil {
				log.Errorf("failed to complete care calendar step of pet %d: %v", e.Data.PetId, err)
				return err
			}
			return nil
		},
	)
	return service
}

func (s *ServiceImpl) GetProgress(ctx context.Context, petId int) (Progress, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return Progress{}, err
	}
	return s.repo.GetProgress(ctx, userId, petId)
}

func (s *ServiceImpl) CompleteStep(ctx context.Context, petId int, step Step) (Progress, error) {
	return s.update(ctx, petId, step, Progress.Complete)
}

func (s *ServiceImpl) SkipStep(ctx context.Context, petId int, step Step) (Progress, error) {
	return s.update(ctx, petId, step, Progress.Skip)
}

func (s *ServiceImpl) SetDismissed(ctx context.Context, petId int, dismissed bool) (Progress, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return Progress{}, err
	}
	return s.modify(ctx, userId, petId, func(progress Progress) Progress {
		progress.Dismissed = dismissed
		return progress
	})
}

func (s *ServiceImpl) update(ctx context.Context, petId int, step Step, apply func(Progress, Step) Progress) (Progress, error) {
	if _, ok := ParseStep(string(step)); !ok {
		return Progress{}, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return Progress{}, err
	}
	return s.modify(ctx, userId, petId, func(progress Progress) Progress {
		return apply(progress, step)
	})
}

// modify runs a read-modify-write of the pet's progress under its row lock.
func (s *ServiceImpl) modify(ctx context.Context, userId int, petId int, change func(Progress) Progress) (Progress, error) {
	var saved Progress
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		progress, err := repo.LockProgress(ctx, userId, petId)
		if err != nil {
			return err
		}
		saved, err = repo.SaveProgress(ctx, userId, change(progress))
		return err
	})
	if err != nil {
		return Progress{}, err
	}
	return saved, nil
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
