package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/petpassport/petpassport/internal/config"
	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/internal/utils"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/calendar_feed"
	"github.com/petpassport/petpassport/pkg/onboarding"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/reminder"
	"github.com/petpassport/petpassport/pkg/share"
	"github.com/petpassport/petpassport/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	PetService *pet.ServiceImpl
	PetHandler *pet.Handler

	CalendarService *calendar.ServiceImpl
	CalendarHandler *calendar.Handler

	FeedService *calendar_feed.Service
	FeedHandler *calendar_feed.Handler

	ShareService *share.ServiceImpl
	ShareHandler *share.Handler

	OnboardingService *onboarding.ServiceImpl
	OnboardingHandler *onboarding.Handler

	ReminderJob *reminder.Job
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.PetService = pet.NewService(pet.NewRepo(db), deps.EventBus)
	deps.PetHandler = pet.NewHandler(deps.PetService)

	// Subscribes to pet and care event creation, so it has to exist before any request is served.
	deps.OnboardingService = onboarding.NewService(onboarding.NewRepo(db), deps.PetService, deps.EventBus)
	deps.OnboardingHandler = onboarding.NewHandler(deps.OnboardingService)

	deps.CalendarService = calendar.NewService(calendar.NewRepository(db), deps.PetService, deps.EventBus, deps.Clock, cfg.Calendar)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService, cfg.Calendar.UpcomingDays)

	deps.FeedService = calendar_feed.NewService(deps.CalendarService, deps.PetService, deps.Clock)
	deps.FeedHandler = calendar_feed.NewHandler(deps.FeedService)

	deps.ShareService = share.NewService(share.NewRepo(db), deps.PetService, deps.CalendarService, deps.UserService,
		deps.Clock, cfg.Share, cfg.Calendar.UpcomingDays)
	deps.ShareHandler = share.NewHandler(deps.ShareService, cfg.Host)

	deps.ReminderJob = reminder.NewJob(deps.UserService, deps.CalendarService, reminder.LogNotifier{}, cfg.Reminder.LookaheadDays)

	return deps
}
