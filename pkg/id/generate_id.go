package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// PaymentReferencePrefix marks cashier-facing payment reference numbers.
const PaymentReferencePrefix = "PRN-"

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewPaymentReference returns PRN-YYYYMMDD-XXXXXXXXXX where the suffix is
// 10 uppercase hex digits. Callers still check the store before using it.
func NewPaymentReference(at time.Time) string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return PaymentReferencePrefix + at.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b))
}

// RequestNumber formats the human-readable sequential number of a request.
func RequestNumber(createdAt time.Time, seq uint64) string {
	return fmt.Sprintf("REQ-%d-%06d", createdAt.UTC().Year(), seq)
}
