package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found at gateway")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)

const (
	verifyCommand  = "verify_payment"
	payuTimeLayout = "2006-01-02 15:04:05"
	gatewayTimeout = 15 * time.Second
)

type PayUAdapter struct {
	Key          string
	Salt         string
	IsProduction bool

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	location   *time.Location

	// overrides for tests; empty means the documented PayU endpoints
	paymentEndpoint string
	verifyEndpoint  string
}

func NewPayUAdapter(key, salt string, isProd bool) *PayUAdapter {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+30*60)
	}
	return &PayUAdapter{
		Key:          key,
		Salt:         salt,
		IsProduction: isProd,
		httpClient:   &http.Client{Timeout: gatewayTimeout},
		breaker:      newBreaker("payu"),
		location:     loc,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// BreakerState reports the verify circuit breaker state ("closed", "open", "half-open").
func (p *PayUAdapter) BreakerState() string {
	return p.breaker.State().String()
}

func (p *PayUAdapter) paymentURL() string {
	if p.paymentEndpoint != "" {
		return p.paymentEndpoint
	}
	if p.IsProduction {
		return "https://secure.payu.in/_payment"
	}
	return "https://test.payu.in/_payment"
}

func (p *PayUAdapter) verifyURL() string {
	if p.verifyEndpoint != "" {
		return p.verifyEndpoint
	}
	if p.IsProduction {
		return "https://info.payu.in/merchant/postservice?form=2"
	}
	return "https://test.payu.in/merchant/postservice?form=2"
}

// InitiatePayment returns the hosted checkout form. PayU's initiate step is
// a browser form post, so nothing goes over the network here.
func (p *PayUAdapter) InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	if p.Key == "" || p.Salt == "" {
		return PaymentResponse{}, fmt.Errorf("payu: merchant key and salt are required")
	}
	if req.TransactionID == "" || req.Amount == "" || req.CallbackURL == "" {
		return PaymentResponse{}, fmt.Errorf("payu: txnid, amount and callback url are required")
	}

	hash := Sign(PaymentHashString(p.Key, p.Salt, req))

	fields := map[string]string{
		"key":         p.Key,
		"txnid":       req.TransactionID,
		"amount":      req.Amount,
		"currency":    req.Currency,
		"productinfo": req.ProductInfo,
		"firstname":   req.CustomerName,
		"email":       req.CustomerEmail,
		"phone":       req.CustomerPhone,
		"surl":        req.CallbackURL,
		"furl":        req.CallbackURL,
		"hash":        hash,
	}

	return PaymentResponse{
		PaymentURL: p.paymentURL(),
		Data:       fields,
	}, nil
}

type payuTransaction struct {
	MihpayID     flexString `json:"mihpayid"`
	TxnID        string     `json:"txnid"`
	Status       string     `json:"status"`
	Amount       flexString `json:"amt"`
	ProductInfo  string     `json:"productinfo"`
	FirstName    string     `json:"firstname"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Mode         string     `json:"mode"`
	ErrorMessage string     `json:"error_Message"`
	AddedOn      string     `json:"addedon"`
}

type payuVerifyResponse struct {
	Status             int                        `json:"status"`
	Msg                string                     `json:"msg"`
	TransactionDetails map[string]payuTransaction `json:"transaction_details"`
}

// VerifyPayment asks PayU for the transaction record keyed by txnID.
func (p *PayUAdapter) VerifyPayment(ctx context.Context, txnID string) (Transaction, error) {
	txnID = strings.TrimSpace(txnID)
	if txnID == "" {
		return Transaction{}, fmt.Errorf("payu verify requires txnid")
	}

	form := url.Values{}
	form.Set("key", p.Key)
	form.Set("command", verifyCommand)
	form.Set("var1", txnID)
	form.Set("hash", Sign(VerifyHashString(p.Key, verifyCommand, txnID, p.Salt)))

	raw, err := p.breaker.Execute(func() ([]byte, error) {
		return p.post(ctx, form)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Transaction{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return Transaction{}, err
	}

	var res payuVerifyResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return Transaction{}, fmt.Errorf("payu verify decode: %w body=%s", err, string(raw))
	}

	detail, ok := res.TransactionDetails[txnID]
	if !ok || strings.EqualFold(detail.Status, "Not Found") || strings.EqualFold(string(detail.MihpayID), "Not Found") {
		return Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, txnID)
	}

	tx := Transaction{
		TxnID:        detail.TxnID,
		GatewayID:    string(detail.MihpayID),
		Status:       Status(detail.Status),
		Amount:       string(detail.Amount),
		ProductInfo:  detail.ProductInfo,
		FirstName:    detail.FirstName,
		Email:        detail.Email,
		Phone:        detail.Phone,
		Mode:         detail.Mode,
		ErrorMessage: detail.ErrorMessage,
	}
	if tx.TxnID == "" {
		tx.TxnID = txnID
	}
	if detail.AddedOn != "" {
		if t, err := time.ParseInLocation(payuTimeLayout, detail.AddedOn, p.location); err == nil {
			tx.AddedOn = t
		}
	}
	return tx, nil
}

func (p *PayUAdapter) post(ctx context.Context, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.verifyURL(), bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payu verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payu verify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payu verify read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payu verify failed: http=%d body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

// flexString accepts a JSON string or number; PayU is not consistent about
// amounts and ids.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
