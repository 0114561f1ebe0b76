package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petpassport/petpassport/internal/config"
	"github.com/petpassport/petpassport/internal/utils"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrShareLinkExpired = errors.New("share link expired")

type PetReader interface {
	GetPet(ctx context.Context, id int) (pet.Pet, error)
}

type UpcomingReader interface {
	GetUpcoming(ctx context.Context, days int, petIds []int) ([]calendar.CalendarOccurrence, error)
}

type OwnerReader interface {
	GetUser(ctx context.Context, id int) (user.User, error)
}

type Service interface {
	CreateLink(ctx context.Context, link Link) (Link, error)
	ListLinks(ctx context.Context, petId int) ([]Link, error)
	UpdateLink(ctx context.Context, link Link) (Link, error)
	DeleteLink(ctx context.Context, petId int, id int) (bool, error)
	GetPublicView(ctx context.Context, token string) (PublicView, error)
}

type ServiceImpl struct {
	repo         Repository
	pets         PetReader
	calendar     UpcomingReader
	owners       OwnerReader
	clock        utils.Clock
	cfg          config.Share
	upcomingDays int
}

func NewService(repo Repository, pets PetReader, calendar UpcomingReader, owners OwnerReader, clock utils.Clock,
	cfg config.Share, upcomingDays int) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		pets:         pets,
		calendar:     calendar,
		owners:       owners,
		clock:        clock,
		cfg:          cfg,
		upcomingDays: upcomingDays,
	}
}

// CreateLink issues a new random token for the pet. Links without an expiry get the configured default TTL.
func (s *ServiceImpl) CreateLink(ctx context.Context, link Link) (Link, error) {
	userId, err := s.ownerOf(ctx, link.PetId)
	if err != nil {
		return Link{}, err
	}
	if link.ExpiresAt == nil && s.cfg.DefaultTTLHours > 0 {
		expiresAt := s.clock.Now().Add(time.Duration(s.cfg.DefaultTTLHours) * time.Hour)
		link.ExpiresAt = &expiresAt
	}
	link.Token = uuid.NewString()
	return s.repo.CreateLink(ctx, userId, link)
}

func (s *ServiceImpl) ListLinks(ctx context.Context, petId int) ([]Link, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLinks(ctx, userId, petId)
}

// UpdateLink changes visibility and expiry; the token stays the same.
func (s *ServiceImpl) UpdateLink(ctx context.Context, link Link) (Link, error) {
	userId, err := s.ownerOf(ctx, link.PetId)
	if err != nil {
		return Link{}, err
	}
	return s.repo.UpdateLink(ctx, userId, link)
}

func (s *ServiceImpl) DeleteLink(ctx context.Context, petId int, id int) (bool, error) {
	userId, err := s.ownerOf(ctx, petId)
	if err != nil {
		return false, err
	}
	return s.repo.DeleteLink(ctx, userId, petId, id)
}

// GetPublicView resolves a token without a current user. The pet and its calendar are read on behalf
// of the link owner and filtered by the link's visibility.
func (s *ServiceImpl) GetPublicView(ctx context.Context, token string) (PublicView, error) {
	if _, err := uuid.Parse(token); err != nil {
		return PublicView{}, ErrShareLinkNotFound
	}
	link, ownerId, err := s.repo.GetLinkByToken(ctx, token)
	if err != nil {
		return PublicView{}, err
	}
	if link.Expired(s.clock.Now()) {
		return PublicView{}, ErrShareLinkExpired
	}

	owner, err := s.owners.GetUser(ctx, ownerId)
	if err != nil {
		return PublicView{}, fmt.Errorf("failed to get owner of share link %d: %w", link.Id, err)
	}
	ownerCtx := user.WithUser(ctx, owner)

	p, err := s.pets.GetPet(ownerCtx, link.PetId)
	if err != nil {
		if errors.Is(err, pet.ErrPetNotFound) {
			return PublicView{}, ErrShareLinkNotFound
		}
		return PublicView{}, err
	}

	view := PublicView{
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		ExpiresAt: link.ExpiresAt,
	}
	v := link.Visibility
	if v.ShowBirthDate {
		view.BirthDate = p.BirthDate
	}
	if v.ShowMicrochip {
		view.Microchip = p.Microchip
	}
	if v.ShowNotes {
		view.Notes = p.Notes
	}
	if v.ShowCalendar {
		upcoming, err := s.calendar.GetUpcoming(ownerCtx, s.upcomingDays, []int{link.PetId})
		if err != nil {
			return PublicView{}, fmt.Errorf("failed to get upcoming care events: %w", err)
		}
		if !v.ShowEventDetails {
			upcoming = withoutDetails(upcoming)
		}
		view.Upcoming = upcoming
	}
	log.Debugf("serving share link %d for pet %d", link.Id, link.PetId)
	return view, nil
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

// withoutDetails hides notes and location of every occurrence's event.
func withoutDetails(occurrences []calendar.CalendarOccurrence) []calendar.CalendarOccurrence {
	result := make([]calendar.CalendarOccurrence, len(occurrences))
	for i, occurrence := range occurrences {
		event := occurrence.Event
		event.Notes = ""
		event.Location = ""
		occurrence.Event = event
		result[i] = occurrence
	}
	return result
}
