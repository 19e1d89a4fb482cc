package invoices

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// referenceAlphabet avoids characters that read ambiguously over the phone
// or in print (no I/O/0/1, no K/N/X lookalikes).
const referenceAlphabet = "ABCDEFGHJLMPQRSTUVWYZ23456789"

const referenceLength = 6

// NewReference generates a short human-quotable invoice reference.
func NewReference() (string, error) {
	buf := make([]byte, referenceLength)
	max := big.NewInt(int64(len(referenceAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invoice reference: %w", err)
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}

	return string(buf), nil
}
