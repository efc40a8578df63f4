package main

import (
	"errors"
	"fmt"
	"net/http"

	"tourney/internal/domain/registrations"
	"tourney/internal/infra/dbx"

	"github.com/go-chi/chi/v5"
)

const maxBookingIDAttempts = 3

var (
	errInvalidEventID       = errors.New("invalid event id")
	errEventNotFound        = errors.New("event not found")
	errEventClosed          = errors.New("event is not open for registration")
	errRegistrationNotFound = errors.New("registration not found")
)

type PlayerPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"required,oneof=male female"`
	Mobile      string `json:"mobile" validate:"required,mobile"`
	Email       string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	IDProof     string `json:"id_proof,omitempty" validate:"omitempty,max=255"`
}

func (p PlayerPayload) toPlayer() registrations.Player {
	return registrations.Player{
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Mobile:      p.Mobile,
		Email:       p.Email,
		IDProof:     p.IDProof,
	}
}

type CreateRegistrationPayload struct {
	TeamName       string        `json:"team_name" validate:"required,max=100"`
	Category       string        `json:"category" validate:"required"`
	Player1        PlayerPayload `json:"player1" validate:"required"`
	Player2        PlayerPayload `json:"player2" validate:"required"`
	PreferredVenue string        `json:"preferred_venue,omitempty" validate:"omitempty,max=200"`
}

// createRegistrationHandler godoc
//
//	@Summary		Register a team
//	@Description	Enters a two-player team into an event. The amount is the category price; the booking stays pending until its payment is verified.
//	@Tags			registrations
//	@Accept			json
//	@Produce		json
//	@Param			eventID	path		int							true	"Event ID"
//	@Param			payload	body		CreateRegistrationPayload	true	"Team and players"
//	@Success		201		{object}	registrations.Registration
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		409		{object}	error
//	@Failure		500		{object}	error
//	@Router			/v1/events/{eventID}/registrations [post]
func (app *application) createRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateRegistrationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ev, ok := app.loadEvent(w, r)
	if !ok {
		return
	}
	if !ev.Open() {
		app.conflictResponse(w, r, errEventClosed)
		return
	}

	category, ok := registrations.LookupCategory(payload.Category)
	if !ok {
		app.badRequestResponse(w, r, fmt.Errorf("%w: %q", registrations.ErrUnknownCategory, payload.Category))
		return
	}

	now := app.now()
	p1, p2 := payload.Player1.toPlayer(), payload.Player2.toPlayer()
	if err := category.Admit([]*registrations.Player{&p1, &p2}, now); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reg := &registrations.Registration{
		EventID:        ev.ID,
		TeamName:       payload.TeamName,
		Category:       category.Key,
		Player1:        p1,
		Player2:        p2,
		PreferredVenue: payload.PreferredVenue,
		Amount:         category.Price,
		Status:         registrations.StatusPending,
	}

	var err error
	for attempt := 1; attempt <= maxBookingIDAttempts; attempt++ {
		reg.BookingID, err = app.bookingIDs.Generate(now)
		if err != nil {
			break
		}
		err = app.store.Registrations.Create(r.Context(), reg)
		if !errors.Is(err, dbx.ErrConflict) {
			break
		}
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("registration created", "booking_id", reg.BookingID, "event_id", ev.ID, "category", category.Key)

	if err := app.jsonResponse(w, http.StatusCreated, reg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getRegistrationHandler godoc
//
//	@Summary		Get a registration
//	@Tags			registrations
//	@Produce		json
//	@Param			bookingID	path		string	true	"Booking ID"
//	@Success		200			{object}	registrations.Registration
//	@Failure		404			{object}	error
//	@Failure		500			{object}	error
//	@Router			/v1/registrations/{bookingID} [get]
func (app *application) getRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	reg, err := app.store.Registrations.GetByBookingID(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if reg == nil {
		app.notFoundResponse(w, r, errRegistrationNotFound)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, reg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listCategoriesHandler godoc
//
//	@Summary		List categories
//	@Description	Age/gender brackets and their entry fee in INR.
//	@Tags			registrations
//	@Produce		json
//	@Success		200	{array}	registrations.Category
//	@Router			/v1/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, registrations.Categories()); err != nil {
		app.internalServerError(w, r, err)
	}
}
