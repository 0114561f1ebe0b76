package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")

	// Pets
	r.HandleFunc("/api/pet", deps.PetHandler.ListPets).Methods("GET")
	r.HandleFunc("/api/pet", deps.PetHandler.CreatePet).Methods("POST")
	r.HandleFunc("/api/pet/{petId}", deps.PetHandler.GetPet).Methods("GET")
	r.HandleFunc("/api/pet/{petId}", deps.PetHandler.UpdatePet).Methods("PUT")
	r.HandleFunc("/api/pet/{petId}", deps.PetHandler.DeletePet).Methods("DELETE")

	// Care events
	r.HandleFunc("/api/pet/{petId}/event", deps.CalendarHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/pet/{petId}/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/pet/{petId}/event/{eventId}", deps.CalendarHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/pet/{petId}/event/{eventId}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/pet/{petId}/event/{eventId}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/pet/{petId}/calendar.ics", deps.FeedHandler.PetCalendar).Methods("GET")

	// Calendar views
	r.HandleFunc("/api/calendar/occurrences", deps.CalendarHandler.GetOccurrences).Methods("GET")
	r.HandleFunc("/api/calendar/month", deps.CalendarHandler.GetMonth).Methods("GET")
	r.HandleFunc("/api/calendar/upcoming", deps.CalendarHandler.GetUpcoming).Methods("GET")

	// Sharing
	r.HandleFunc("/api/pet/{petId}/share", deps.ShareHandler.ListLinks).Methods("GET")
	r.HandleFunc("/api/pet/{petId}/share", deps.ShareHandler.CreateLink).Methods("POST")
	r.HandleFunc("/api/pet/{petId}/share/{shareId}", deps.ShareHandler.UpdateLink).Methods("PUT")
	r.HandleFunc("/api/pet/{petId}/share/{shareId}", deps.ShareHandler.DeleteLink).Methods("DELETE")
	r.HandleFunc("/api/public/share/{token}", deps.ShareHandler.GetPublicView).Methods("GET")

	// Onboarding
	r.HandleFunc("/api/pet/{petId}/onboarding", deps.OnboardingHandler.GetProgress).Methods("GET")
	r.HandleFunc("/api/pet/{petId}/onboarding", deps.OnboardingHandler.UpdateProgress).Methods("PUT")
}
