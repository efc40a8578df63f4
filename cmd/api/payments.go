package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tourney/internal/domain/paymentsrepo"
	"tourney/internal/domain/registrations"
	"tourney/internal/domain/storage"
	"tourney/internal/infra/dbx"
	"tourney/internal/payments"
)

const maxTxnIDAttempts = 3

type PaymentPayload struct {
	Amount    float64         `json:"amount" validate:"gt=0,lte=99999999.99,money"`
	Product   json.RawMessage `json:"product" validate:"required"`
	FirstName string          `json:"firstname" validate:"required,max=100"`
	Email     string          `json:"email" validate:"required,email,max=255"`
	Mobile    string          `json:"mobile" validate:"required,mobile"`
	BookingID string          `json:"booking_id,omitempty" validate:"omitempty,max=32"`
}

type paymentFormResponse struct {
	TxnID  string            `json:"txnid"`
	Action string            `json:"action"`
	Fields map[string]string `json:"fields"`
}

// getPaymentHandler godoc
//
//	@Summary		Start a PayU payment
//	@Description	Signs the checkout request and returns the PayU hosted payment form. Browsers get an auto-submitting HTML form; clients sending Accept: application/json get the form fields.
//	@Tags			payments
//	@Accept			json
//	@Produce		html,json
//	@Param			payload	body		PaymentPayload		true	"Checkout request"
//	@Success		200		{object}	paymentFormResponse	"Payment form"
//	@Failure		400		{object}	map[string]any		"msg and error stack"
//	@Router			/get-payment [post]
func (app *application) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload PaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.initiationFailedResponse(w, r, fmt.Errorf("read payment request: %w", err))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.initiationFailedResponse(w, r, fmt.Errorf("validate payment request: %w", err))
		return
	}

	ctx := r.Context()

	if payload.BookingID != "" {
		if err := app.checkBookingPayable(r, payload); err != nil {
			app.initiationFailedResponse(w, r, err)
			return
		}
	}

	in := payments.InitiateInput{
		Amount:    payload.Amount,
		Product:   payload.Product,
		FirstName: payload.FirstName,
		Email:     payload.Email,
		Mobile:    payload.Mobile,
	}

	var (
		initiation payments.Initiation
		err        error
	)
	for attempt := 1; attempt <= maxTxnIDAttempts; attempt++ {
		initiation, err = app.initiator.Initiate(ctx, in)
		if err != nil {
			break
		}

		err = app.store.WithPaymentsTx(ctx, func(s *storage.PaymentsTx) error {
			return recordInitiation(r, s, initiation, payload.BookingID)
		})
		if !errors.Is(err, dbx.ErrConflict) {
			break
		}
		app.logger.Warnw("txnid collision, regenerating", "txnid", initiation.TxnID, "attempt", attempt)
	}
	if err != nil {
		app.initiationFailedResponse(w, r, err)
		return
	}

	app.logger.Infow("payment initiated", "txnid", initiation.TxnID, "amount", initiation.Request.Amount, "booking_id", payload.BookingID)

	if wantsJSON(r) {
		resp := paymentFormResponse{
			TxnID:  initiation.TxnID,
			Action: initiation.Form.PaymentURL,
			Fields: initiation.Form.Data,
		}
		if err := writeJSON(w, http.StatusOK, resp); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := renderAutoPostForm(w, initiation.Form.PaymentURL, initiation.Form.Data); err != nil {
		app.logger.Errorw("render payment form", "txnid", initiation.TxnID, "error", err)
	}
}

// checkBookingPayable makes sure a booking exists, still awaits payment and
// is charged exactly its category price.
func (app *application) checkBookingPayable(r *http.Request, payload PaymentPayload) error {
	reg, err := app.store.Registrations.GetByBookingID(r.Context(), payload.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", payload.BookingID, err)
	}
	if reg == nil {
		return fmt.Errorf("booking %s: %w", payload.BookingID, dbx.ErrNotFound)
	}
	if reg.Status != registrations.StatusPending {
		return fmt.Errorf("booking %s is %s: %w", payload.BookingID, reg.Status, dbx.ErrConflict)
	}
	if payments.FormatAmount(reg.Amount) != payments.FormatAmount(payload.Amount) {
		return fmt.Errorf("booking %s costs %s, got %s: %w", payload.BookingID,
			payments.FormatAmount(reg.Amount), payments.FormatAmount(payload.Amount), payments.ErrAmountMismatch)
	}
	return nil
}

func recordInitiation(r *http.Request, s *storage.PaymentsTx, in payments.Initiation, bookingID string) error {
	ctx := r.Context()

	t := &paymentsrepo.Transaction{
		TxnID:       in.TxnID,
		Amount:      in.Request.Amount,
		Currency:    in.Request.Currency,
		ProductInfo: in.Request.ProductInfo,
		FirstName:   in.Request.CustomerName,
		Email:       in.Request.CustomerEmail,
		Phone:       in.Request.CustomerPhone,
	}
	if bookingID != "" {
		t.BookingID = &bookingID
	}

	if err := s.Transactions.Create(ctx, t); err != nil {
		return fmt.Errorf("store transaction %s: %w", in.TxnID, err)
	}

	if bookingID != "" {
		if err := s.Registrations.AttachTxn(ctx, bookingID, in.TxnID); err != nil {
			return fmt.Errorf("attach %s to booking %s: %w", in.TxnID, bookingID, err)
		}
	}

	logPayload := map[string]any{
		"action": in.Form.PaymentURL,
		"fields": in.Form.Data,
	}
	if err := s.Logs.InsertPaymentLog(ctx, in.TxnID, paymentsrepo.LogInitiate, logPayload); err != nil {
		return fmt.Errorf("log initiation %s: %w", in.TxnID, err)
	}
	return nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
