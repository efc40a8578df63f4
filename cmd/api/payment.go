package main

import (
	"context"
	"html/template"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"tourney/internal/domain/paymentsrepo"
	"tourney/internal/domain/registrations"
	"tourney/internal/mailer"
	"tourney/internal/payments"

	"github.com/go-chi/chi/v5"
)

const createdAtLayout = "1/2/2006, 3:04:05 PM"

type verifyStatusResponse struct {
	Status    payments.Status `json:"status"`
	Amount    string          `json:"amount"`
	TxnID     string          `json:"txnid"`
	Method    string          `json:"method"`
	Error     string          `json:"error"`
	CreatedAt string          `json:"created_at"`
}

type verifyErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// verifyRedirectHandler godoc
//
//	@Summary		Payment return
//	@Description	PayU posts the payer back here. The transaction is verified with the gateway and the browser is redirected to the frontend status page.
//	@Tags			payments
//	@Param			txnid	path	string	true	"Transaction id"
//	@Success		303		"Redirect to <frontend>/payment/<status>/<txnid>"
//	@Router			/verify/{txnid} [post]
//	@Router			/api/payment/verify/{txnid} [post]
func (app *application) verifyRedirectHandler(w http.ResponseWriter, r *http.Request) {
	txnID := chi.URLParam(r, "txnid")

	tx, err := app.verifier.Verify(r.Context(), txnID)
	app.recordVerification(r.Context(), txnID, tx, err)
	if err != nil {
		app.logger.Warnw("payment verification failed", "txnid", txnID, "error", err)
		http.Redirect(w, r, app.verifier.FailureURL(txnID), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, app.verifier.StatusURL(tx.Status, tx.TxnID), http.StatusSeeOther)
}

// verifyStatusHandler godoc
//
//	@Summary		Payment status
//	@Description	Verifies a transaction with the gateway and returns its status.
//	@Tags			payments
//	@Produce		json
//	@Param			txnid	path		string					true	"Transaction id"
//	@Success		200		{object}	verifyStatusResponse
//	@Failure		500		{object}	verifyErrorResponse
//	@Router			/api/payment/verify/{txnid} [get]
func (app *application) verifyStatusHandler(w http.ResponseWriter, r *http.Request) {
	txnID := chi.URLParam(r, "txnid")

	tx, err := app.verifier.Verify(r.Context(), txnID)
	app.recordVerification(r.Context(), txnID, tx, err)
	if err != nil {
		app.logger.Warnw("payment verification failed", "txnid", txnID, "error", err)
		resp := verifyErrorResponse{
			Error:   "Payment verification failed",
			Message: err.Error(),
		}
		if err := writeJSON(w, http.StatusInternalServerError, resp); err != nil {
			app.logger.Errorw("failed to write response", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		return
	}

	resp := verifyStatusResponse{
		Status:    tx.Status,
		Amount:    tx.Amount,
		TxnID:     tx.TxnID,
		Method:    tx.Mode,
		Error:     tx.ErrorMessage,
		CreatedAt: formatCreatedAt(tx.AddedOn),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// sameAmount compares decimal strings numerically, so "100" matches "100.00".
func sameAmount(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return a == b
	}
	return math.Abs(fa-fb) < 0.005
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(createdAtLayout)
}

// recordVerification appends the verify outcome to the payment log and, on
// success, confirms the booking txnID was initiated for. It reports whether a
// booking was confirmed. Failures here are logged and never change what the
// payer is shown.
func (app *application) recordVerification(ctx context.Context, txnID string, tx payments.Transaction, verifyErr error) bool {
	if verifyErr != nil {
		payload := map[string]string{"error": verifyErr.Error()}
		if err := app.store.Payments.Logs.InsertPaymentLog(ctx, txnID, paymentsrepo.LogError, payload); err != nil {
			app.logger.Errorw("failed to write payment log", "txnid", txnID, "error", err)
		}
		return false
	}

	if err := app.store.Payments.Logs.InsertPaymentLog(ctx, txnID, paymentsrepo.LogVerify, tx); err != nil {
		app.logger.Errorw("failed to write payment log", "txnid", txnID, "error", err)
	}

	if !tx.Succeeded() {
		return false
	}

	local, err := app.store.Payments.Transactions.GetByTxnID(ctx, tx.TxnID)
	if err != nil {
		app.logger.Errorw("failed to load transaction", "txnid", tx.TxnID, "error", err)
		return false
	}
	if local != nil && !sameAmount(local.Amount, tx.Amount) {
		app.logger.Warnw("gateway amount differs from initiated amount, booking left pending",
			"txnid", tx.TxnID, "initiated", local.Amount, "gateway", tx.Amount)
		return false
	}

	reg, err := app.store.Registrations.ConfirmByTxnID(ctx, tx.TxnID)
	if err != nil {
		app.logger.Errorw("failed to confirm registration", "txnid", tx.TxnID, "error", err)
		return false
	}
	if reg == nil {
		// already confirmed, or not a booking payment
		return false
	}

	app.logger.Infow("registration confirmed", "booking_id", reg.BookingID, "txnid", tx.TxnID)
	app.sendConfirmation(ctx, reg)
	return true
}

func (app *application) sendConfirmation(ctx context.Context, reg *registrations.Registration) {
	email := reg.ContactEmail()
	if email == "" || app.mailer == nil {
		return
	}

	eventName := ""
	if ev, err := app.store.Events.GetByID(ctx, reg.EventID); err != nil {
		app.logger.Warnw("load event for confirmation email", "event_id", reg.EventID, "error", err)
	} else if ev != nil {
		eventName = ev.Name
	}

	categoryName := reg.Category
	if c, ok := registrations.LookupCategory(reg.Category); ok {
		categoryName = c.Name
	}

	txnID := ""
	if reg.TxnID != nil {
		txnID = *reg.TxnID
	}

	data := struct {
		Username     string
		TeamName     string
		EventName    string
		CategoryName string
		BookingID    string
		Player1      string
		Player2      string
		Amount       string
		TxnID        string
	}{
		Username:     reg.Player1.Name,
		TeamName:     reg.TeamName,
		EventName:    eventName,
		CategoryName: categoryName,
		BookingID:    reg.BookingID,
		Player1:      reg.Player1.Name,
		Player2:      reg.Player2.Name,
		Amount:       payments.FormatAmount(reg.Amount),
		TxnID:        txnID,
	}

	app.background(func() {
		if err := app.mailer.Send(mailer.RegistrationConfirmedTemplate, reg.Player1.Name, email, data); err != nil {
			app.logger.Errorw("failed to send confirmation email", "booking_id", reg.BookingID, "error", err)
			return
		}
		app.logger.Infow("confirmation email sent", "booking_id", reg.BookingID)
	})
}

var autoPostForm = template.Must(template.New("payment-form").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Redirecting…</title>
  <style>
    body { font-family: -apple-system, system-ui, Segoe UI, Roboto, Arial; padding: 24px; }
    .box { max-width: 480px; margin: 40px auto; text-align: center; }
  </style>
</head>
<body>
  <div class="box">
    <h3>Redirecting to PayU…</h3>
    <p>Please wait.</p>

    <form id="f" method="POST" action="{{.Action}}">
      {{range $k, $v := .Fields}}
        <input type="hidden" name="{{$k}}" value="{{$v}}">
      {{end}}
      <noscript><button type="submit">Continue</button></noscript>
    </form>

    <script>
      (function(){ document.getElementById('f').submit(); })();
    </script>
  </div>
</body>
</html>`))

// renderAutoPostForm writes a page that immediately posts fields to action.
func renderAutoPostForm(w io.Writer, action string, fields map[string]string) error {
	return autoPostForm.Execute(w, map[string]any{
		"Action": template.URL(action),
		"Fields": fields,
	})
}
