package payments

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// udfSlots is the number of user-defined fields PayU reserves in the
// request hash. They are always sent empty.
const udfSlots = 5

// PaymentHashString builds the PayU request hash input:
//
//	key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||salt
//
// PayU recomputes this on its side, so field order and the number of empty
// segments must not change.
func PaymentHashString(key, salt string, req PaymentRequest) string {
	parts := make([]string, 0, 6+udfSlots*2+1)
	parts = append(parts,
		key,
		req.TransactionID,
		req.Amount,
		req.ProductInfo,
		req.CustomerName,
		req.CustomerEmail,
	)
	// udf1..udf5, then five reserved empty fields
	for i := 0; i < udfSlots*2; i++ {
		parts = append(parts, "")
	}
	parts = append(parts, salt)
	return strings.Join(parts, "|")
}

// VerifyHashString builds the hash input for a merchant postservice command.
func VerifyHashString(key, command, var1, salt string) string {
	return strings.Join([]string{key, command, var1, salt}, "|")
}

// Sign returns the lowercase hex SHA-512 digest of s.
func Sign(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
