package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const DefaultCurrency = "INR"

var (
	ErrInvalidProduct = errors.New("product must be valid JSON")
	ErrAmountMismatch = errors.New("amount does not match booking")
)

// InitiateInput is a validated booking checkout request.
type InitiateInput struct {
	Amount    float64
	Product   json.RawMessage
	FirstName string
	Email     string
	Mobile    string
}

// Initiation is the outcome of a successful initiate call.
type Initiation struct {
	TxnID   string
	Request PaymentRequest
	Form    PaymentResponse
}

// Initiator signs a payment request and hands it to the gateway.
type Initiator struct {
	gateway  PaymentGateway
	apiURL   string
	currency string
	newTxnID func() string
}

type InitiatorOption func(*Initiator)

// WithTxnIDs replaces the transaction id source.
func WithTxnIDs(next func() string) InitiatorOption {
	return func(i *Initiator) { i.newTxnID = next }
}

// NewInitiator returns an Initiator whose callback URLs are rooted at apiURL,
// the externally reachable origin of this service.
func NewInitiator(gateway PaymentGateway, apiURL string, opts ...InitiatorOption) *Initiator {
	i := &Initiator{
		gateway:  gateway,
		apiURL:   strings.TrimRight(apiURL, "/"),
		currency: DefaultCurrency,
		newTxnID: NewTxnID,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CallbackURL is where the gateway returns the payer, for success and failure alike.
func (i *Initiator) CallbackURL(txnID string) string {
	return fmt.Sprintf("%s/verify/%s", i.apiURL, url.PathEscape(txnID))
}

func (i *Initiator) Initiate(ctx context.Context, in InitiateInput) (Initiation, error) {
	productInfo, err := ProductInfo(in.Product)
	if err != nil {
		return Initiation{}, err
	}

	txnID := i.newTxnID()
	req := PaymentRequest{
		TransactionID: txnID,
		Amount:        FormatAmount(in.Amount),
		Currency:      i.currency,
		ProductInfo:   productInfo,
		CustomerName:  in.FirstName,
		CustomerEmail: in.Email,
		CustomerPhone: in.Mobile,
		CallbackURL:   i.CallbackURL(txnID),
	}

	form, err := i.gateway.InitiatePayment(ctx, req)
	if err != nil {
		return Initiation{}, fmt.Errorf("initiate payment %s: %w", txnID, err)
	}

	return Initiation{TxnID: txnID, Request: req, Form: form}, nil
}

// FormatAmount renders an amount in its shortest decimal form: 100, 100.5.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// ProductInfo serializes the product descriptor the way it is signed and sent.
func ProductInfo(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", ErrInvalidProduct
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return buf.String(), nil
}
