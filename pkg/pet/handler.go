package pet

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/petpassport/petpassport/internal/rest"
	log "github.com/sirupsen/logrus"
)

type PetDTO struct {
	Id        int     `json:"id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Microchip string  `json:"microchip,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPets godoc
// @Summary List pets
// @Description Get all pets of the current user
// @Tags Pet
// @Produce json
// @Success 200 {array} PetDTO
// @Failure 403 {string} string "User not found"
// @Router /api/pet [get]
// @Security XUserId
func (h *Handler) ListPets(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing pets")
	pets, err := h.service.ListPets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]PetDTO, 0, len(pets))
	for _, pet := range pets {
		dtos = append(dtos, PetToDTO(pet))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreatePet godoc
// @Summary Create a pet
// @Tags Pet
// @Accept json
// @Produce json
// @Param pet body PetDTO true "Pet"
// @Success 201 {object} PetDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid pet"
// @Failure 403 {string} string "User not found"
// @Router /api/pet [post]
// @Security XUserId
func (h *Handler) CreatePet(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating pet")
	pet, ok := decodePet(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreatePet(r.Context(), pet)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, PetToDTO(created))
}

// GetPet godoc
// @Summary Get a pet
// @Tags Pet
// @Produce json
// @Param petId path int true "Pet ID"
// @Success 200 {object} PetDTO
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId} [get]
// @Security XUserId
func (h *Handler) GetPet(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	log.Tracef("Getting pet %d", petId)
	pet, err := h.service.GetPet(r.Context(), petId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PetToDTO(pet))
}

// UpdatePet godoc
// @Summary Update a pet
// @Tags Pet
// @Accept json
// @Produce json
// @Param petId path int true "Pet ID"
// @Param pet body PetDTO true "Pet"
// @Success 200 {object} PetDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid pet"
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId} [put]
// @Security XUserId
func (h *Handler) UpdatePet(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	log.Debugf("Updating pet %d", petId)
	pet, ok := decodePet(w, r)
	if !ok {
		return
	}
	pet.Id = petId
	updated, err := h.service.UpdatePet(r.Context(), pet)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PetToDTO(updated))
}

// DeletePet godoc
// @Summary Delete a pet
// @Description Deletes the pet with its care events, share links and onboarding progress
// @Tags Pet
// @Param petId path int true "Pet ID"
// @Success 204
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId} [delete]
// @Security XUserId
func (h *Handler) DeletePet(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	log.Debugf("Deleting pet %d", petId)
	deleted, err := h.service.DeletePet(r.Context(), petId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, ErrPetNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePet(w http.ResponseWriter, r *http.Request) (Pet, bool) {
	var dto PetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return Pet{}, false
	}
	pet, err := DTOToPet(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid birth date", "birthDate must be in YYYY-MM-DD format")
		return Pet{}, false
	}
	return pet, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPetDataInvalid):
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet", err.Error())
	case errors.Is(err, ErrPetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func PetToDTO(pet Pet) PetDTO {
	dto := PetDTO{
		Id:        pet.Id,
		Name:      pet.Name,
		Species:   pet.Species,
		Breed:     pet.Breed,
		Microchip: pet.Microchip,
		Notes:     pet.Notes,
	}
	if pet.BirthDate != nil {
		birthDate := pet.BirthDate.Format(rest.DateLayout)
		dto.BirthDate = &birthDate
	}
	return dto
}

func DTOToPet(dto PetDTO) (Pet, error) {
	pet := Pet{
		Id:        dto.Id,
		Name:      dto.Name,
		Species:   dto.Species,
		Breed:     dto.Breed,
		Microchip: dto.Microchip,
		Notes:     dto.Notes,
	}
	if dto.BirthDate != nil && *dto.BirthDate != "" {
		birthDate, err := rest.ParseDate(*dto.BirthDate, time.UTC)
		if err != nil {
			return Pet{}, err
		}
		pet.BirthDate = &birthDate
	}
	return pet, nil
}
