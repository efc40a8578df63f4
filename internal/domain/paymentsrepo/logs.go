package paymentsrepo

import (
	"context"
	"time"
)

const (
	LogInitiate = "initiate"
	LogVerify   = "verify"
	LogError    = "error"
)

type PaymentLog struct {
	ID        int64     `json:"id"`
	TxnID     string    `json:"txnid"`
	LogType   string    `json:"log_type"` // initiate, verify, error
	Payload   any       `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LogsStore interface {
	InsertPaymentLog(ctx context.Context, txnID string, logType string, payload any) error
}
