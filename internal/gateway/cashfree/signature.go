package cashfree

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"time"
)

var (
	ErrBadSignature = errors.New("webhook signature mismatch")
	ErrStaleWebhook = errors.New("webhook timestamp outside allowed skew")
	ErrBadTimestamp = errors.New("webhook timestamp malformed")
)

// VerifyWebhookSignature checks the x-webhook-signature header against the
// HMAC-SHA256 of timestamp+rawBody keyed with the webhook secret, and bounds
// the timestamp's clock skew. No notification field may be trusted before
// this passes.
func VerifyWebhookSignature(secret, timestamp string, rawBody []byte, signature string, maxSkew time.Duration) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrBadTimestamp
	}
	if maxSkew > 0 {
		sent := time.Unix(ts, 0)
		if d := time.Since(sent); d > maxSkew || d < -maxSkew {
			return ErrStaleWebhook
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

// SignWebhook produces the signature a gateway would send for the given
// timestamp and body. Used by tests and local webhook replay tooling.
func SignWebhook(secret, timestamp string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
