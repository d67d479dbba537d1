package payment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var refKVRe = regexp.MustCompile(`(?i)(?:^|[;,])([a-zA-Z0-9_]+)=([a-zA-Z0-9_-]+)`)

// BuildReference encodes the booking and purpose into a processor-safe
// transaction reference so webhook events can be resolved back to the
// transition they confirm.
//
// Example: "booking_id=4f2c...;purpose=sign_off_fee;n=a1b2c3d4"
func BuildReference(bookingID, purpose string) string {
	nonce := make([]byte, 4)
	_, _ = rand.Read(nonce)
	return fmt.Sprintf("booking_id=%s;purpose=%s;n=%s", bookingID, purpose, hex.EncodeToString(nonce))
}

// ParseKeyFromReference extracts a key=value token from a reference string.
// It is intentionally tolerant: processors echo references back verbatim but
// dashboards and support staff sometimes paste them with extra punctuation.
func ParseKeyFromReference(ref string, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	matches := refKVRe.FindAllStringSubmatch(ref, -1)
	for _, m := range matches {
		if len(m) != 3 {
			continue
		}
		if strings.EqualFold(m[1], key) {
			return m[2]
		}
	}
	return ""
}
