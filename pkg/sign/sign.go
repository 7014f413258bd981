// Package sign authenticates webhook payloads with a shared-secret HMAC.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Header is the HTTP header that carries the hex digest on forwarded events.
const Header = "x-event-forwarder-signature"

// SignBytes returns the hex-encoded HMAC-SHA256 of body keyed by secret.
// Callers must sign exactly the bytes they put on the wire.
func SignBytes(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign serializes body to JSON and signs the result. It also returns the
// serialized bytes so the request can carry the identical payload.
func Sign(body any, secret string) (payload []byte, signature string, err error) {
	payload, err = json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal payload for signing: %w", err)
	}
	return payload, SignBytes(payload, secret), nil
}

// Verify reports whether signature is the valid digest of body under secret.
// The comparison runs in constant time.
func Verify(body []byte, secret, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
