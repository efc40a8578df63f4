package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tourney/internal/domain/paymentsrepo"
	"tourney/internal/domain/registrations"
	"tourney/internal/mailer"
	"tourney/internal/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestVerifyRedirect_UsesGatewayStatus(t *testing.T) {
	for _, path := range []string{"/verify/PAYU_MONEY_123", "/api/payment/verify/PAYU_MONEY_123"} {
		t.Run(path, func(t *testing.T) {
			ta := newTestApplication(t)
			ta.gateway.records["PAYU_MONEY_123"] = payments.Transaction{
				TxnID: "PAYU_MONEY_123", Status: payments.StatusSuccess, Amount: "100.00",
			}

			rr := ta.do(t, http.MethodPost, path, nil, nil)
			require.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, testFrontendURL+"/payment/success/PAYU_MONEY_123", rr.Header().Get("Location"))
		})
	}
}

func TestVerifyRedirect_IsIdempotent(t *testing.T) {
	ta := newTestApplication(t)
	ta.gateway.records["PAYU_MONEY_7"] = payments.Transaction{TxnID: "PAYU_MONEY_7", Status: payments.StatusFailure}

	first := ta.do(t, http.MethodPost, "/verify/PAYU_MONEY_7", nil, nil)
	second := ta.do(t, http.MethodPost, "/verify/PAYU_MONEY_7", nil, nil)

	assert.Equal(t, testFrontendURL+"/payment/failure/PAYU_MONEY_7", first.Header().Get("Location"))
	assert.Equal(t, first.Header().Get("Location"), second.Header().Get("Location"))
	assert.Equal(t, []string{paymentsrepo.LogVerify, paymentsrepo.LogVerify}, ta.logs.types("PAYU_MONEY_7"))
}

func TestVerifyRedirect_PassesUnknownStatusThrough(t *testing.T) {
	ta := newTestApplication(t)
	ta.gateway.records["PAYU_MONEY_8"] = payments.Transaction{TxnID: "PAYU_MONEY_8", Status: "pending"}

	rr := ta.do(t, http.MethodPost, "/verify/PAYU_MONEY_8", nil, nil)
	assert.Equal(t, testFrontendURL+"/payment/pending/PAYU_MONEY_8", rr.Header().Get("Location"))
}

func TestVerifyRedirect_FailureOnGatewayError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", nil},
		{"gateway down", payments.ErrGatewayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApplication(t)
			ta.gateway.verifyErr = tt.err

			rr := ta.do(t, http.MethodPost, "/verify/PAYU_MONEY_404", nil, nil)
			require.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, testFrontendURL+"/payment/failure/PAYU_MONEY_404", rr.Header().Get("Location"))
			assert.Equal(t, []string{paymentsrepo.LogError}, ta.logs.types("PAYU_MONEY_404"))
		})
	}
}

func TestVerifyStatus_JSON(t *testing.T) {
	ta := newTestApplication(t)
	ist := time.FixedZone("IST", 5*3600+30*60)
	ta.gateway.records["PAYU_MONEY_5"] = payments.Transaction{
		TxnID:        "PAYU_MONEY_5",
		Status:       payments.StatusSuccess,
		Amount:       "400.00",
		Mode:         "UPI",
		ErrorMessage: "No Error",
		AddedOn:      time.Date(2024, 1, 5, 14, 3, 9, 0, ist),
	}

	rr := ta.do(t, http.MethodGet, "/api/payment/verify/PAYU_MONEY_5", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[verifyStatusResponse](t, rr)
	assert.Equal(t, verifyStatusResponse{
		Status:    payments.StatusSuccess,
		Amount:    "400.00",
		TxnID:     "PAYU_MONEY_5",
		Method:    "UPI",
		Error:     "No Error",
		CreatedAt: "1/5/2024, 2:03:09 PM",
	}, resp)
}

func TestVerifyStatus_ErrorPayload(t *testing.T) {
	ta := newTestApplication(t)
	ta.gateway.verifyErr = errors.New("connection reset")

	rr := ta.do(t, http.MethodGet, "/api/payment/verify/PAYU_MONEY_9", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	resp := decode[verifyErrorResponse](t, rr)
	assert.Equal(t, "Payment verification failed", resp.Error)
	assert.Contains(t, resp.Message, "connection reset")
}

func TestVerify_ConfirmsBookingOnce(t *testing.T) {
	ta := newTestApplication(t)
	txnID := "PAYU_MONEY_77"
	ta.registrations.regs["BTXYZ"] = &registrations.Registration{
		BookingID: "BTXYZ",
		EventID:   1,
		TeamName:  "Smashers",
		Category:  "adults-men",
		Player1:   registrations.Player{Name: "Ravi", Email: "ravi@example.com"},
		Player2:   registrations.Player{Name: "Arjun"},
		Amount:    400,
		Status:    registrations.StatusPending,
		TxnID:     &txnID,
	}
	ta.gateway.records[txnID] = payments.Transaction{TxnID: txnID, Status: payments.StatusSuccess}

	ta.do(t, http.MethodPost, "/verify/"+txnID, nil, nil)
	ta.do(t, http.MethodPost, "/verify/"+txnID, nil, nil)
	ta.wg.Wait()

	assert.Equal(t, registrations.StatusConfirmed, ta.registrations.regs["BTXYZ"].Status)
	require.Len(t, ta.mail.sent, 1)
	sent := ta.mail.sent[0]
	assert.Equal(t, mailer.RegistrationConfirmedTemplate, sent.template)
	assert.Equal(t, "ravi@example.com", sent.email)

	// the template must render with what the handler passes
	subject, body, err := mailer.Render(sent.template, sent.data)
	require.NoError(t, err)
	assert.Contains(t, subject, "BTXYZ")
	assert.Contains(t, body, "Summer Doubles")
	assert.Contains(t, body, "Adults (15+ years) - Men&#39;s")
}

func TestVerify_FailedPaymentLeavesBookingPending(t *testing.T) {
	ta := newTestApplication(t)
	txnID := "PAYU_MONEY_78"
	ta.registrations.regs["BTXYZ"] = &registrations.Registration{
		BookingID: "BTXYZ", Status: registrations.StatusPending, TxnID: &txnID,
	}
	ta.gateway.records[txnID] = payments.Transaction{TxnID: txnID, Status: payments.StatusFailure}

	ta.do(t, http.MethodPost, "/verify/"+txnID, nil, nil)
	ta.wg.Wait()

	assert.Equal(t, registrations.StatusPending, ta.registrations.regs["BTXYZ"].Status)
	assert.Empty(t, ta.mail.sent)
}

func TestFormatCreatedAt(t *testing.T) {
	assert.Equal(t, "", formatCreatedAt(time.Time{}))
	assert.Equal(t, "12/31/2023, 11:59:59 PM", formatCreatedAt(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestVerify_AmountMismatchLeavesBookingPending(t *testing.T) {
	ta := newTestApplication(t)
	txnID := "PAYU_MONEY_79"
	ta.registrations.regs["BTXYZ"] = &registrations.Registration{
		BookingID: "BTXYZ", Amount: 400, Status: registrations.StatusPending, TxnID: &txnID,
		Player1: registrations.Player{Name: "Ravi", Email: "ravi@example.com"},
	}
	ta.transactions.rows[txnID] = &paymentsrepo.Transaction{TxnID: txnID, Amount: "400"}
	ta.gateway.records[txnID] = payments.Transaction{TxnID: txnID, Status: payments.StatusSuccess, Amount: "4.00"}

	rr := ta.do(t, http.MethodPost, "/verify/"+txnID, nil, nil)
	ta.wg.Wait()

	// the payer still sees what the gateway says
	assert.Equal(t, testFrontendURL+"/payment/success/"+txnID, rr.Header().Get("Location"))
	assert.Equal(t, registrations.StatusPending, ta.registrations.regs["BTXYZ"].Status)
	assert.Empty(t, ta.mail.sent)
}

func TestSameAmount(t *testing.T) {
	assert.True(t, sameAmount("100", "100.00"))
	assert.True(t, sameAmount("100.5", "100.50"))
	assert.False(t, sameAmount("400", "4.00"))
	assert.False(t, sameAmount("abc", "100"))
}

func TestVerify_EarlierAttemptConfirmsBooking(t *testing.T) {
	ta := newTestApplication(t)
	ta.registrations.regs["BTABC"] = &registrations.Registration{
		BookingID: "BTABC", EventID: 1, Category: "adults-men", Amount: 400, Status: registrations.StatusPending,
		Player1: registrations.Player{Name: "Ravi", Email: "ravi@example.com"},
	}

	body := checkoutBody()
	body["amount"] = 400
	body["booking_id"] = "BTABC"

	first := decode[paymentFormResponse](t, ta.do(t, http.MethodPost, "/get-payment", body, jsonAccept))
	second := decode[paymentFormResponse](t, ta.do(t, http.MethodPost, "/get-payment", body, jsonAccept))
	require.NotEqual(t, first.TxnID, second.TxnID)
	require.Equal(t, second.TxnID, *ta.registrations.regs["BTABC"].TxnID)

	ta.gateway.records[first.TxnID] = payments.Transaction{TxnID: first.TxnID, Status: payments.StatusSuccess, Amount: "400.00"}

	rr := ta.do(t, http.MethodPost, "/verify/"+first.TxnID, nil, nil)
	ta.wg.Wait()

	assert.Equal(t, testFrontendURL+"/payment/success/"+first.TxnID, rr.Header().Get("Location"))
	reg := ta.registrations.regs["BTABC"]
	assert.Equal(t, registrations.StatusConfirmed, reg.Status)
	require.NotNil(t, reg.TxnID)
	assert.Equal(t, first.TxnID, *reg.TxnID)
	require.Len(t, ta.mail.sent, 1)

	// the abandoned second attempt must not confirm or mail again
	ta.gateway.records[second.TxnID] = payments.Transaction{TxnID: second.TxnID, Status: payments.StatusSuccess, Amount: "400.00"}
	ta.do(t, http.MethodPost, "/verify/"+second.TxnID, nil, nil)
	ta.wg.Wait()
	assert.Equal(t, first.TxnID, *ta.registrations.regs["BTABC"].TxnID)
	assert.Len(t, ta.mail.sent, 1)
}

func TestVerify_ConfirmsWithoutMailer(t *testing.T) {
	client, err := newMailer(mailConfig{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Nil(t, client)

	ta := newTestApplication(t)
	ta.application.mailer = client
	txnID := "PAYU_MONEY_90"
	ta.registrations.regs["BTXYZ"] = &registrations.Registration{
		BookingID: "BTXYZ", Status: registrations.StatusPending, TxnID: &txnID,
		Player1: registrations.Player{Name: "Ravi", Email: "ravi@example.com"},
	}
	ta.gateway.records[txnID] = payments.Transaction{TxnID: txnID, Status: payments.StatusSuccess}

	rr := ta.do(t, http.MethodPost, "/verify/"+txnID, nil, nil)
	ta.wg.Wait()

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, registrations.StatusConfirmed, ta.registrations.regs["BTXYZ"].Status)
}

type brokenWriter struct {
	header http.Header
	code   int
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(code int) { w.code = code }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("client went away") }

func TestVerifyStatus_LogsFailedErrorWrite(t *testing.T) {
	ta := newTestApplication(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	ta.logger = zap.New(core).Sugar()
	ta.gateway.verifyErr = errors.New("connection reset")

	w := &brokenWriter{header: http.Header{}}
	ta.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/payment/verify/PAYU_MONEY_9", nil))

	assert.Equal(t, http.StatusInternalServerError, w.code)
	entries := logs.FilterMessage("failed to write response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "client went away", entries[0].ContextMap()["error"])
}
