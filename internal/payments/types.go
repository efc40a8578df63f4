package payments

import "time"

// Status is the transaction status as reported by the gateway. Values are
// passed through verbatim; the constants name the ones PayU documents.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// PaymentRequest is everything the gateway needs to render a hosted payment
// form for one transaction.
type PaymentRequest struct {
	TransactionID string
	Amount        string // shortest decimal form, e.g. "100" or "100.5"
	Currency      string
	ProductInfo   string // serialized product descriptor, signed as-is
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CallbackURL   string // used for both the success and failure return
}

// PaymentResponse is the gateway-hosted payment form: the browser posts
// Data to PaymentURL.
type PaymentResponse struct {
	PaymentURL string            `json:"action"`
	Data       map[string]string `json:"fields"`
}

// Transaction is the gateway's record for one payment attempt.
type Transaction struct {
	TxnID        string    `json:"txnid"`
	GatewayID    string    `json:"mihpayid,omitempty"`
	Status       Status    `json:"status"`
	Amount       string    `json:"amount"`
	ProductInfo  string    `json:"productinfo,omitempty"`
	FirstName    string    `json:"firstname,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	AddedOn      time.Time `json:"addedon"`
}

func (t Transaction) Succeeded() bool {
	return t.Status == StatusSuccess
}
