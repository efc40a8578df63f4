package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"tourney/internal/domain/events"
	"tourney/internal/domain/paymentsrepo"
	"tourney/internal/domain/registrations"
	"tourney/internal/domain/storage"
	"tourney/internal/infra/dbx"
	"tourney/internal/payments"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAPIURL      = "http://api.test"
	testFrontendURL = "http://front.test"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu        sync.Mutex
	initiated []payments.PaymentRequest
	verified  []string
	initErr   error
	verifyErr error
	records   map[string]payments.Transaction
}

func (g *fakeGateway) InitiatePayment(_ context.Context, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initiated = append(g.initiated, req)
	if g.initErr != nil {
		return payments.PaymentResponse{}, g.initErr
	}
	return payments.PaymentResponse{
		PaymentURL: "https://test.payu.in/_payment",
		Data: map[string]string{
			"txnid":  req.TransactionID,
			"amount": req.Amount,
			"surl":   req.CallbackURL,
			"furl":   req.CallbackURL,
			"hash":   "signed",
		},
	}, nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, txnID string) (payments.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified = append(g.verified, txnID)
	if g.verifyErr != nil {
		return payments.Transaction{}, g.verifyErr
	}
	tx, ok := g.records[txnID]
	if !ok {
		return payments.Transaction{}, payments.ErrTransactionNotFound
	}
	return tx, nil
}

type fakeEvents struct {
	events map[int64]*events.Event
}

func (f *fakeEvents) List(_ context.Context, limit, offset int) ([]events.Event, int, error) {
	var all []events.Event
	for id := int64(1); id <= int64(len(f.events)); id++ {
		if ev, ok := f.events[id]; ok {
			all = append(all, *ev)
		}
	}
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*events.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	cp := *ev
	return &cp, nil
}

type fakeRegistrations struct {
	mu   sync.Mutex
	regs map[string]*registrations.Registration
	txs  *fakeTransactions
}

func (f *fakeRegistrations) Create(_ context.Context, r *registrations.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.regs[r.BookingID]; ok {
		return dbx.ErrConflict
	}
	r.ID = int64(len(f.regs) + 1)
	r.CreatedAt = testNow
	r.UpdatedAt = testNow
	cp := *r
	f.regs[r.BookingID] = &cp
	return nil
}

func (f *fakeRegistrations) GetByBookingID(_ context.Context, bookingID string) (*registrations.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrations) AttachTxn(_ context.Context, bookingID, txnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[bookingID]
	if !ok || r.Status != registrations.StatusPending {
		return dbx.ErrNotFound
	}
	r.TxnID = &txnID
	return nil
}

func (f *fakeRegistrations) ConfirmByTxnID(_ context.Context, txnID string) (*registrations.Registration, error) {
	var owner string
	if f.txs != nil {
		f.txs.mu.Lock()
		if t, ok := f.txs.rows[txnID]; ok && t.BookingID != nil {
			owner = *t.BookingID
		}
		f.txs.mu.Unlock()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.Status != registrations.StatusPending {
			continue
		}
		if (owner != "" && r.BookingID == owner) || (r.TxnID != nil && *r.TxnID == txnID) {
			r.Status = registrations.StatusConfirmed
			r.TxnID = &txnID
			at := testNow
			r.ConfirmedAt = &at
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistrations) pending(bookingID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[bookingID]
	return ok && r.Status == registrations.StatusPending
}

type fakeTransactions struct {
	mu   sync.Mutex
	regs *fakeRegistrations
	rows map[string]*paymentsrepo.Transaction
	// taken txnids are rejected once each, to exercise regeneration
	taken map[string]bool
}

func (f *fakeTransactions) Create(_ context.Context, t *paymentsrepo.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[t.TxnID]; ok {
		return dbx.ErrConflict
	}
	if f.taken[t.TxnID] {
		delete(f.taken, t.TxnID)
		return dbx.ErrConflict
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = testNow
	}
	cp := *t
	f.rows[t.TxnID] = &cp
	return nil
}

func (f *fakeTransactions) ListPendingAttempts(_ context.Context, createdBefore time.Time, limit int) ([]paymentsrepo.Transaction, error) {
	f.mu.Lock()
	var candidates []paymentsrepo.Transaction
	for _, t := range f.rows {
		if t.BookingID != nil && t.CreatedAt.Before(createdBefore) && t.CreatedAt.After(createdBefore.Add(-24*time.Hour)) {
			candidates = append(candidates, *t)
		}
	}
	f.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })

	var out []paymentsrepo.Transaction
	for _, t := range candidates {
		if len(out) < limit && f.regs.pending(*t.BookingID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) GetByTxnID(_ context.Context, txnID string) (*paymentsrepo.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[txnID]
	if !ok {
		return nil, nil
	}
	return t, nil
}

type fakeLogs struct {
	mu   sync.Mutex
	logs []paymentsrepo.PaymentLog
}

func (f *fakeLogs) InsertPaymentLog(_ context.Context, txnID string, logType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, paymentsrepo.PaymentLog{TxnID: txnID, LogType: logType, Payload: payload})
	return nil
}

func (f *fakeLogs) types(txnID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.logs {
		if l.TxnID == txnID {
			out = append(out, l.LogType)
		}
	}
	return out
}

type sentMail struct {
	template string
	username string
	email    string
	data     any
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(templateFile, username, email string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{templateFile, username, email, data})
	return nil
}

type testApp struct {
	*application
	gateway       *fakeGateway
	events        *fakeEvents
	registrations *fakeRegistrations
	transactions  *fakeTransactions
	logs          *fakeLogs
	mail          *fakeMailer
	handler       http.Handler
}

func newTestApplication(t *testing.T, opts ...func(*config)) *testApp {
	t.Helper()

	gw := &fakeGateway{records: map[string]payments.Transaction{}}
	ev := &fakeEvents{events: map[int64]*events.Event{
		1: {ID: 1, Name: "Summer Doubles", Status: "upcoming", AvailableTickets: 20, Price: 400},
		2: {ID: 2, Name: "Spring Cup", Status: events.StatusCompleted, AvailableTickets: 0},
	}}
	txs := &fakeTransactions{rows: map[string]*paymentsrepo.Transaction{}, taken: map[string]bool{}}
	regs := &fakeRegistrations{regs: map[string]*registrations.Registration{}, txs: txs}
	txs.regs = regs
	logs := &fakeLogs{}
	mail := &fakeMailer{}

	bookingIDs, err := registrations.NewBookingIDGenerator("test")
	require.NoError(t, err)

	cfg := config{
		env:         "test",
		apiURL:      testAPIURL,
		frontendURL: testFrontendURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	app := &application{
		config:     cfg,
		store:      storage.NewContainerFromStores(ev, regs, txs, logs),
		logger:     zap.NewNop().Sugar(),
		mailer:     mail,
		initiator:  payments.NewInitiator(gw, testAPIURL),
		verifier:   payments.NewVerifier(gw, testFrontendURL),
		bookingIDs: bookingIDs,
		now:        func() time.Time { return testNow },
	}

	return &testApp{
		application:   app,
		gateway:       gw,
		events:        ev,
		registrations: regs,
		transactions:  txs,
		logs:          logs,
		mail:          mail,
		handler:       app.mount(),
	}
}

func (ta *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
