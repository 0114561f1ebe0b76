package calendar_feed

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/petpassport/petpassport/internal/rest"
	"github.com/petpassport/petpassport/pkg/pet"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PetCalendar godoc
// @Summary iCalendar feed of a pet
// @Description All care events of the pet as VEVENTs, recurring events with an RRULE
// @Tags Calendar
// @Produce text/calendar
// @Param petId path int true "Pet ID"
// @Success 200 {string} string "iCalendar document"
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/calendar.ics [get]
// @Security XUserId
func (h *Handler) PetCalendar(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	log.Debugf("Rendering calendar feed for pet %d", petId)

	body, err := h.service.PetCalendar(r.Context(), petId)
	if err != nil {
		if errors.Is(err, pet.ErrPetNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"pet-%d.ics\"", petId))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write calendar feed: %v", err)
	}
}
