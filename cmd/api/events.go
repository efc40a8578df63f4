package main

import (
	"net/http"
	"strconv"

	"tourney/internal/domain/events"
	"tourney/internal/params"

	"github.com/go-chi/chi/v5"
)

type eventListResponse struct {
	Events     []events.Event    `json:"events"`
	Pagination params.Pagination `json:"pagination"`
}

// listEventsHandler godoc
//
//	@Summary		List events
//	@Tags			events
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Page size (max 30)"
//	@Success		200		{object}	eventListResponse
//	@Failure		500		{object}	error
//	@Router			/v1/events [get]
func (app *application) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query(), params.EventLimits)

	list, total, err := app.store.Events.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if list == nil {
		list = []events.Event{}
	}
	p.ComputeMeta(total)

	if err := app.jsonResponse(w, http.StatusOK, eventListResponse{Events: list, Pagination: p}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getEventHandler godoc
//
//	@Summary		Get an event
//	@Tags			events
//	@Produce		json
//	@Param			eventID	path		int	true	"Event ID"
//	@Success		200		{object}	events.Event
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Router			/v1/events/{eventID} [get]
func (app *application) getEventHandler(w http.ResponseWriter, r *http.Request) {
	ev, ok := app.loadEvent(w, r)
	if !ok {
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, ev); err != nil {
		app.internalServerError(w, r, err)
	}
}

// loadEvent resolves {eventID}, writing the error response itself when it
// cannot.
func (app *application) loadEvent(w http.ResponseWriter, r *http.Request) (*events.Event, bool) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil || eventID <= 0 {
		app.badRequestResponse(w, r, errInvalidEventID)
		return nil, false
	}

	ev, err := app.store.Events.GetByID(r.Context(), eventID)
	if err != nil {
		app.internalServerError(w, r, err)
		return nil, false
	}
	if ev == nil {
		app.notFoundResponse(w, r, errEventNotFound)
		return nil, false
	}
	return ev, true
}
