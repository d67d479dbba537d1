package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// VerifyPaystackWebhook verifies the webhook signature using the shared
// secret. Signature header is hex(HMAC_SHA512(body)).
func VerifyPaystackWebhook(body []byte, sigHeader string, secret string) bool {
	if sigHeader == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sigHeader))
}
