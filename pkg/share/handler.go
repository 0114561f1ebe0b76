package share

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/petpassport/petpassport/internal/rest"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/petpassport/petpassport/pkg/pet"
	log "github.com/sirupsen/logrus"
)

type ShareLinkDTO struct {
	Id               int        `json:"id"`
	PetId            int        `json:"petId"`
	Token            string     `json:"token"`
	Url              string     `json:"url"`
	ShowBirthDate    bool       `json:"showBirthDate"`
	ShowMicrochip    bool       `json:"showMicrochip"`
	ShowNotes        bool       `json:"showNotes"`
	ShowCalendar     bool       `json:"showCalendar"`
	ShowEventDetails bool       `json:"showEventDetails"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

type PublicViewDTO struct {
	Name      string                   `json:"name"`
	Species   string                   `json:"species"`
	Breed     string                   `json:"breed,omitempty"`
	BirthDate *string                  `json:"birthDate,omitempty"`
	Microchip string                   `json:"microchip,omitempty"`
	Notes     string                   `json:"notes,omitempty"`
	Upcoming  []calendar.OccurrenceDTO `json:"upcoming,omitempty"`
	ExpiresAt *time.Time               `json:"expiresAt,omitempty"`
}

type Handler struct {
	service Service
	host    string
}

// NewHandler creates the share handler; host is the public base url the share urls are built on.
func NewHandler(service Service, host string) *Handler {
	return &Handler{service: service, host: strings.TrimSuffix(host, "/")}
}

// ListLinks godoc
// @Summary List share links of a pet
// @Tags Share
// @Produce json
// @Param petId path int true "Pet ID"
// @Success 200 {array} ShareLinkDTO
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/share [get]
// @Security XUserId
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	links, err := h.service.ListLinks(r.Context(), petId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]ShareLinkDTO, 0, len(links))
	for _, link := range links {
		dtos = append(dtos, h.linkToDTO(link))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateLink godoc
// @Summary Create a share link
// @Description Creates a link with a new random token. Omitting expiresAt applies the configured default TTL.
// @Tags Share
// @Accept json
// @Produce json
// @Param petId path int true "Pet ID"
// @Param link body ShareLinkDTO true "Visibility and expiry"
// @Success 201 {object} ShareLinkDTO
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/share [post]
// @Security XUserId
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return
	}
	link, ok := decodeLink(w, r)
	if !ok {
		return
	}
	link.PetId = petId
	log.Debugf("Creating share link for pet %d", petId)
	created, err := h.service.CreateLink(r.Context(), link)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, h.linkToDTO(created))
}

// UpdateLink godoc
// @Summary Update visibility or expiry of a share link
// @Tags Share
// @Accept json
// @Produce json
// @Param petId path int true "Pet ID"
// @Param shareId path int true "Share link ID"
// @Param link body ShareLinkDTO true "Visibility and expiry"
// @Success 200 {object} ShareLinkDTO
// @Failure 404 {string} string "Share link not found"
// @Router /api/pet/{petId}/share/{shareId} [put]
// @Security XUserId
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	petId, shareId, ok := linkVars(w, r)
	if !ok {
		return
	}
	link, ok := decodeLink(w, r)
	if !ok {
		return
	}
	link.PetId = petId
	link.Id = shareId
	updated, err := h.service.UpdateLink(r.Context(), link)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, h.linkToDTO(updated))
}

// DeleteLink godoc
// @Summary Revoke a share link
// @Tags Share
// @Param petId path int true "Pet ID"
// @Param shareId path int true "Share link ID"
// @Success 204
// @Failure 404 {string} string "Share link not found"
// @Router /api/pet/{petId}/share/{shareId} [delete]
// @Security XUserId
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	petId, shareId, ok := linkVars(w, r)
	if !ok {
		return
	}
	log.Debugf("Revoking share link %d of pet %d", shareId, petId)
	deleted, err := h.service.DeleteLink(r.Context(), petId, shareId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, ErrShareLinkNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPublicView godoc
// @Summary Public pet passport
// @Description Anonymous view of a shared pet, filtered by the link's visibility
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} PublicViewDTO
// @Failure 404 {string} string "Share link not found"
// @Failure 410 {string} string "Share link expired"
// @Router /api/public/share/{token} [get]
func (h *Handler) GetPublicView(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	view, err := h.service.GetPublicView(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := PublicViewDTO{
		Name:      view.Name,
		Species:   view.Species,
		Breed:     view.Breed,
		Microchip: view.Microchip,
		Notes:     view.Notes,
		ExpiresAt: view.ExpiresAt,
	}
	if view.BirthDate != nil {
		birthDate := view.BirthDate.Format(rest.DateLayout)
		dto.BirthDate = &birthDate
	}
	if view.Upcoming != nil {
		dto.Upcoming = calendar.OccurrencesToDTO(view.Upcoming)
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func linkVars(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return 0, 0, false
	}
	shareId, err := rest.IntVar(r, "shareId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid share link id", err.Error())
		return 0, 0, false
	}
	return petId, shareId, true
}

func decodeLink(w http.ResponseWriter, r *http.Request) (Link, bool) {
	var dto ShareLinkDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return Link{}, false
	}
	return Link{
		Visibility: Visibility{
			ShowBirthDate:    dto.ShowBirthDate,
			ShowMicrochip:    dto.ShowMicrochip,
			ShowNotes:        dto.ShowNotes,
			ShowCalendar:     dto.ShowCalendar,
			ShowEventDetails: dto.ShowEventDetails,
		},
		ExpiresAt: dto.ExpiresAt,
	}, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrShareLinkExpired):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, ErrShareLinkNotFound), errors.Is(err, pet.ErrPetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("share request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) linkToDTO(link Link) ShareLinkDTO {
	v := link.Visibility
	return ShareLinkDTO{
		Id:               link.Id,
		PetId:            link.PetId,
		Token:            link.Token,
		Url:              h.host + "/share/" + link.Token,
		ShowBirthDate:    v.ShowBirthDate,
		ShowMicrochip:    v.ShowMicrochip,
		ShowNotes:        v.ShowNotes,
		ShowCalendar:     v.ShowCalendar,
		ShowEventDetails: v.ShowEventDetails,
		CreatedAt:        link.CreatedAt,
		ExpiresAt:        link.ExpiresAt,
	}
}
