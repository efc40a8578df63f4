package payments

import (
	"fmt"
	"math/rand"
)

const (
	TxnIDPrefix = "PAYU_MONEY_"
	txnIDSpace  = 8888888
)

// NewTxnID returns a fresh transaction id of the form PAYU_MONEY_<digits>.
// The space is small, so callers persisting ids must handle collisions.
func NewTxnID() string {
	return fmt.Sprintf("%s%d", TxnIDPrefix, rand.Intn(txnIDSpace))
}
