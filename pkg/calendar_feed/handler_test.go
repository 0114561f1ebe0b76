package calendar_feed

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/petpassport/petpassport/pkg/calendar"
	"github.com/stretchr/testify/assert"
)

func TestHandler_PetCalendar(t *testing.T) {
	f := setupFeedTest(t)
	f.create(t, calendar.CareEvent{Type: calendar.Training, Title: "Puppy class", EventDate: day(2025, 3, 15)})
	router := mux.NewRouter()
	router.HandleFunc("/api/pet/{petId}/calendar.ics", NewHandler(f.feed).PetCalendar).Methods("GET")

	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"existing pet", "/api/pet/" + strconv.Itoa(f.petId) + "/calendar.ics", http.StatusOK},
		{"unknown pet", "/api/pet/999/calendar.ics", http.StatusNotFound},
		{"invalid pet id", "/api/pet/luna/calendar.ics", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil).WithContext(f.ctx)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "text/calendar; charset=utf-8", rr.Header().Get("Content-Type"))
				assert.Contains(t, rr.Body.String(), "BEGIN:VCALENDAR")
				assert.Contains(t, rr.Body.String(), "SUMMARY:Puppy class")
			}
		})
	}
}
