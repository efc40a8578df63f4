package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Verifier looks up the final state of a transaction after the payer
// returns from the gateway. It never changes the transaction.
type Verifier struct {
	gateway     PaymentGateway
	frontendURL string
}

func NewVerifier(gateway PaymentGateway, frontendURL string) *Verifier {
	return &Verifier{
		gateway:     gateway,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (v *Verifier) Verify(ctx context.Context, txnID string) (Transaction, error) {
	tx, err := v.gateway.VerifyPayment(ctx, txnID)
	if err != nil {
		return Transaction{}, fmt.Errorf("verify payment %s: %w", txnID, err)
	}
	return tx, nil
}

// StatusURL is the frontend status page for a transaction:
// <frontend>/payment/<status>/<txnid>.
func (v *Verifier) StatusURL(status Status, txnID string) string {
	return fmt.Sprintf("%s/payment/%s/%s", v.frontendURL, url.PathEscape(string(status)), url.PathEscape(txnID))
}

// FailureURL is the generic failure page used when verification itself fails.
func (v *Verifier) FailureURL(txnID string) string {
	return v.StatusURL(StatusFailure, txnID)
}
