// Package random produces hex strings used as default secrets and names.
package random

import (
	"crypto/rand"
	"encoding/hex"
)

// String returns n random bytes encoded as 2n hex characters.
// It panics if the system source of randomness fails.
func String(n int) string {
	buf := make([]byte, n)

	_, err := rand.Read(buf)
	if err != nil {
		panic(err)
	}

	return hex.EncodeToString(buf)
}
