package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petpassport/petpassport/internal/rest"
	"github.com/petpassport/petpassport/pkg/pet"
	log "github.com/sirupsen/logrus"
)

type ProgressDTO struct {
	PetId     int      `json:"petId"`
	Completed []string `json:"completed"`
	Skipped   []string `json:"skipped"`
	Dismissed bool     `json:"dismissed"`
	NextStep  *string  `json:"nextStep"`
	Done      bool     `json:"done"`
}

// UpdateDTO either settles one step (step + action) or toggles the dismissed flag.
type UpdateDTO struct {
	Step      string `json:"step,omitempty"`
	Action    string `json:"action,omitempty"`
	Dismissed *bool  `json:"dismissed,omitempty"`
}

const (
	actionComplete = "complete"
	actionSkip     = "skip"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetProgress godoc
// @Summary Get onboarding progress of a pet
// @Tags Onboarding
// @Produce json
// @Param petId path int true "Pet ID"
// @Success 200 {object} ProgressDTO
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/onboarding [get]
// @Security XUserId
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	progress, err := h.service.GetProgress(r.Context(), petId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProgressToDTO(progress))
}

// UpdateProgress godoc
// @Summary Complete or skip an onboarding step, or dismiss onboarding
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param petId path int true "Pet ID"
// @Param update body UpdateDTO true "Step action or dismissed flag"
// @Success 200 {object} ProgressDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid step or action"
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/onboarding [put]
// @Security XUserId
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Debugf("Updating onboarding of pet %d: %+v", petId, dto)

	var progress Progress
	switch {
	case dto.Dismissed != nil && dto.Step == "":
		progress, err = h.service.SetDismissed(r.Context(), petId, *dto.Dismissed)
	case dto.Action == actionComplete:
		progress, err = h.service.CompleteStep(r.Context(), petId, Step(dto.Step))
	case dto.Action == actionSkip:
		progress, err = h.service.SkipStep(r.Context(), petId, Step(dto.Step))
	default:
		rest.WriteError(w, http.StatusBadRequest, "Invalid action", "expected action 'complete' or 'skip', or the dismissed flag")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProgressToDTO(progress))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownStep):
		rest.WriteError(w, http.StatusBadRequest, "Invalid step", err.Error())
	case errors.Is(err, pet.ErrPetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ProgressToDTO(progress Progress) ProgressDTO {
	dto := ProgressDTO{
		PetId:     progress.PetId,
		Completed: fromSteps(progress.Completed),
		Skipped:   fromSteps(progress.Skipped),
		Dismissed: progress.Dismissed,
		Done:      progress.Done(),
	}
	if next, ok := progress.NextStep(); ok {
		name := string(next)
		dto.NextStep = &name
	}
	return dto
}
