package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaystackWebhook(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	secret := "sk_test_secret"

	if !VerifyPaystackWebhook(body, sign(body, secret), secret) {
		t.Fatalf("expected valid signature to verify")
	}
	if VerifyPaystackWebhook(body, sign(body, "other"), secret) {
		t.Fatalf("expected signature from wrong secret to fail")
	}
	if VerifyPaystackWebhook([]byte(`{"event":"tampered"}`), sign(body, secret), secret) {
		t.Fatalf("expected tampered body to fail")
	}
	if VerifyPaystackWebhook(body, "", secret) {
		t.Fatalf("expected missing signature to fail")
	}
	if VerifyPaystackWebhook(body, sign(body, secret), "") {
		t.Fatalf("expected missing secret to fail")
	}
}
