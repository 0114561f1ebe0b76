package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/petpassport/petpassport/internal/rest"
	"github.com/petpassport/petpassport/pkg/pet"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

type CareEventDTO struct {
	Id                    string  `json:"id"`
	PetId                 int     `json:"petId"`
	EventType             string  `json:"eventType"`
	Title                 string  `json:"title"`
	Description           string  `json:"description,omitempty"`
	Notes                 string  `json:"notes,omitempty"`
	Location              string  `json:"location,omitempty"`
	IsRecurring           bool    `json:"isRecurring"`
	EventDate             *string `json:"eventDate,omitempty"`
	EventTime             string  `json:"eventTime,omitempty"`
	RecurrencePattern     string  `json:"recurrencePattern,omitempty"`
	RecurrenceStartDate   *string `json:"recurrenceStartDate,omitempty"`
	RecurrenceEndDate     *string `json:"recurrenceEndDate,omitempty"`
	RecurrenceDayOfWeek   *string `json:"recurrenceDayOfWeek,omitempty"`
	RecurrenceDayOfMonth  *int    `json:"recurrenceDayOfMonth,omitempty"`
	RecurrenceDescription string  `json:"recurrenceDescription,omitempty"`
	Icon                  string  `json:"icon"`
	Color                 string  `json:"color"`
}

type OccurrenceDTO struct {
	Id          string       `json:"id"`
	Date        string       `json:"date"`
	IsRecurring bool         `json:"isRecurring"`
	Event       CareEventDTO `json:"event"`
}

type DayDTO struct {
	Date        string          `json:"date"`
	InMonth     bool            `json:"inMonth"`
	IsToday     bool            `json:"isToday"`
	Occurrences []OccurrenceDTO `json:"occurrences"`
}

type Handler struct {
	service      Service
	upcomingDays int
}

func NewHandler(service Service, upcomingDays int) *Handler {
	return &Handler{service: service, upcomingDays: upcomingDays}
}

// ListEvents godoc
// @Summary List care events of a pet
// @Tags Calendar
// @Produce json
// @Param petId path int true "Pet ID"
// @Success 200 {array} CareEventDTO
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/event [get]
// @Security XUserId
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	petId, ok := petIdVar(w, r)
	if !ok {
		return
	}
	log.Tracef("Listing care events of pet %d", petId)
	events, err := h.service.ListEvents(r.Context(), petId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]CareEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, EventToDTO(event))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateEvent godoc
// @Summary Create a care event
// @Description Creates a one-time or recurring care event for a pet
// @Tags Calendar
// @Accept json
// @Produce json
// @Param petId path int true "Pet ID"
// @Param event body CareEventDTO true "Care event"
// @Success 201 {object} CareEventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid care event"
// @Failure 404 {string} string "Pet not found"
// @Router /api/pet/{petId}/event [post]
// @Security XUserId
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	petId, ok := petIdVar(w, r)
	if !ok {
		return
	}
	log.Debugf("Creating care event for pet %d", petId)
	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	event.PetId = petId

	created, err := h.service.CreateEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(created))
}

// GetEvent godoc
// @Summary Get a care event
// @Tags Calendar
// @Produce json
// @Param petId path int true "Pet ID"
// @Param eventId path string true "Event ID"
// @Success 200 {object} CareEventDTO
// @Failure 404 {string} string "Not found"
// @Router /api/pet/{petId}/event/{eventId} [get]
// @Security XUserId
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	petId, ok := petIdVar(w, r)
	if !ok {
		return
	}
	event, err := h.service.GetEvent(r.Context(), petId, mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(event))
}

// UpdateEvent godoc
// @Summary Update a care event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param petId path int true "Pet ID"
// @Param eventId path string true "Event ID"
// @Param event body CareEventDTO true "Care event"
// @Success 200 {object} CareEventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid care event"
// @Failure 404 {string} string "Not found"
// @Router /api/pet/{petId}/event/{eventId} [put]
// @Security XUserId
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	petId, ok := petIdVar(w, r)
	if !ok {
		return
	}
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Updating care event %s", eventId)
	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	event.Id = eventId
	event.PetId = petId

	updated, err := h.service.UpdateEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Delete a care event
// @Tags Calendar
// @Param petId path int true "Pet ID"
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 404 {string} string "Not found"
// @Router /api/pet/{petId}/event/{eventId} [delete]
// @Security XUserId
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	petId, ok := petIdVar(w, r)
	if !ok {
		return
	}
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Deleting care event %s", eventId)
	deleted, err := h.service.DeleteEvent(r.Context(), petId, eventId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, ErrCareEventNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOccurrences godoc
// @Summary Expanded calendar occurrences
// @Description Projects one-time and recurring care events onto the dates between from and to (inclusive)
// @Tags Calendar
// @Produce json
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Param pet query []int false "Pet IDs to include, all pets when omitted"
// @Success 200 {array} OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid range"
// @Router /api/calendar/occurrences [get]
// @Security XUserId
func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	from, err := rest.ParseDate(r.URL.Query().Get("from"), time.UTC)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in YYYY-MM-DD format")
		return
	}
	to, err := rest.ParseDate(r.URL.Query().Get("to"), time.UTC)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in YYYY-MM-DD format")
		return
	}
	petIds, ok := petIdsParam(w, r)
	if !ok {
		return
	}

	occurrences, err := h.service.GetOccurrences(r.Context(), from, to, petIds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, OccurrencesToDTO(occurrences))
}

// GetMonth godoc
// @Summary Month view
// @Description Sunday-first grid of whole weeks covering the month, with the occurrences of each day
// @Tags Calendar
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param pet query []int false "Pet IDs to include"
// @Success 200 {array} DayDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid month"
// @Router /api/calendar/month [get]
// @Security XUserId
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", err.Error())
		return
	}
	petIds, ok := petIdsParam(w, r)
	if !ok {
		return
	}

	days, err := h.service.GetMonth(r.Context(), year, time.Month(month), petIds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]DayDTO, 0, len(days))
	for _, day := range days {
		dtos = append(dtos, DayDTO{
			Date:        IsoDate(day.Date),
			InMonth:     day.InMonth,
			IsToday:     day.IsToday,
			Occurrences: OccurrencesToDTO(day.Occurrences),
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetUpcoming godoc
// @Summary Upcoming occurrences
// @Description Occurrences from today until today plus the given number of days, in the user's timezone
// @Tags Calendar
// @Produce json
// @Param days query int false "Number of days ahead"
// @Param pet query []int false "Pet IDs to include"
// @Success 200 {array} OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid days"
// @Router /api/calendar/upcoming [get]
// @Security XUserId
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	days := h.upcomingDays
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		var err error
		days, err = strconv.Atoi(daysParam)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid days", err.Error())
			return
		}
	}
	petIds, ok := petIdsParam(w, r)
	if !ok {
		return
	}

	occurrences, err := h.service.GetUpcoming(r.Context(), days, petIds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, OccurrencesToDTO(occurrences))
}

func petIdVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	petId, err := rest.IntVar(r, "petId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", err.Error())
		return 0, false
	}
	return petId, true
}

func petIdsParam(w http.ResponseWriter, r *http.Request) ([]int, bool) {
	values := r.URL.Query()["pet"]
	petIds := make([]int, 0, len(values))
	for _, value := range values {
		petId, err := strconv.Atoi(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid pet id", fmt.Sprintf("pet %q is not a number", value))
			return nil, false
		}
		petIds = append(petIds, petId)
	}
	return petIds, true
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (CareEvent, bool) {
	var dto CareEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return CareEvent{}, false
	}
	event, err := DTOToEvent(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid care event", err.Error())
		return CareEvent{}, false
	}
	return event, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCareEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid care event", err.Error())
	case errors.Is(err, ErrInvalidRange):
		rest.WriteError(w, http.StatusBadRequest, "Invalid range", err.Error())
	case errors.Is(err, pet.ErrPetNotFound), errors.Is(err, ErrCareEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func EventToDTO(event CareEvent) CareEventDTO {
	dto := CareEventDTO{
		Id:                    event.Id,
		PetId:                 event.PetId,
		EventType:             string(event.Type),
		Title:                 event.Title,
		Description:           event.Description,
		Notes:                 event.Notes,
		Location:              event.Location,
		IsRecurring:           event.IsRecurring,
		EventDate:             formatDate(event.EventDate),
		EventTime:             event.EventTime,
		RecurrencePattern:     string(event.RecurrencePattern),
		RecurrenceStartDate:   formatDate(event.RecurrenceStartDate),
		RecurrenceEndDate:     formatDate(event.RecurrenceEndDate),
		RecurrenceDayOfMonth:  event.RecurrenceDayOfMonth,
		RecurrenceDescription: DescribeRecurrence(event),
		Icon:                  event.Type.Icon(),
		Color:                 event.Type.Color(),
	}
	if event.RecurrenceDayOfWeek != nil {
		if name := weekdayName(*event.RecurrenceDayOfWeek); name != "" {
			dto.RecurrenceDayOfWeek = &name
		}
	}
	return dto
}

func DTOToEvent(dto CareEventDTO) (CareEvent, error) {
	eventType, err := ParseEventType(dto.EventType)
	if err != nil {
		return CareEvent{}, err
	}
	event := CareEvent{
		Id:                   dto.Id,
		PetId:                dto.PetId,
		Type:                 eventType,
		Title:                dto.Title,
		Description:          dto.Description,
		Notes:                dto.Notes,
		Location:             dto.Location,
		IsRecurring:          dto.IsRecurring,
		EventTime:            dto.EventTime,
		RecurrencePattern:    RecurrencePattern(dto.RecurrencePattern),
		RecurrenceDayOfMonth: dto.RecurrenceDayOfMonth,
	}
	if event.EventDate, err = parseDate("eventDate", dto.EventDate); err != nil {
		return CareEvent{}, err
	}
	if event.RecurrenceStartDate, err = parseDate("recurrenceStartDate", dto.RecurrenceStartDate); err != nil {
		return CareEvent{}, err
	}
	if event.RecurrenceEndDate, err = parseDate("recurrenceEndDate", dto.RecurrenceEndDate); err != nil {
		return CareEvent{}, err
	}
	if dto.RecurrenceDayOfWeek != nil && *dto.RecurrenceDayOfWeek != "" {
		weekday, ok := ParseDayOfWeek(*dto.RecurrenceDayOfWeek)
		if !ok {
			return CareEvent{}, fmt.Errorf("%w: unknown day of week %q", ErrInvalidCareEvent, *dto.RecurrenceDayOfWeek)
		}
		event.RecurrenceDayOfWeek = &weekday
	}
	return event, nil
}

func OccurrenceToDTO(occurrence CalendarOccurrence) OccurrenceDTO {
	return OccurrenceDTO{
		Id:          occurrence.Id,
		Date:        IsoDate(occurrence.Date),
		IsRecurring: occurrence.IsRecurring,
		Event:       EventToDTO(occurrence.Event),
	}
}

func OccurrencesToDTO(occurrences []CalendarOccurrence) []OccurrenceDTO {
	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, o := range occurrences {
		dtos = append(dtos, OccurrenceToDTO(o))
	}
	return dtos
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	formatted := IsoDate(*d)
	return &formatted
}

func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := rest.ParseDate(*value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be in YYYY-MM-DD format", ErrInvalidCareEvent, field)
	}
	return &d, nil
}
