package payments

import "context"

// PaymentGateway is the slice of a payment provider the booking flow uses:
// render a signed payment form, and look up the final transaction record.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)
	VerifyPayment(ctx context.Context, txnID string) (Transaction, error)
}
