package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

// timestampTolerance bounds how old a signed request may be. Requests outside
// the window are rejected to blunt replay of captured deliveries.
const timestampTolerance = 5 * time.Minute

// SignatureVerifier checks the v0 HMAC-SHA256 request signature Slack attaches
// to every webhook delivery.
type SignatureVerifier struct {
	secret []byte
	clock  clockwork.Clock
}

func NewSignatureVerifier(signingSecret string, clock clockwork.Clock) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(signingSecret), clock: clock}
}

// Verify reports whether the signature matches the request body. timestamp
// and signature come from the X-Slack-Request-Timestamp and X-Slack-Signature
// headers.
func (v *SignatureVerifier) Verify(timestamp, signature string, body []byte) bool {
	if timestamp == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	age := v.clock.Now().Sub(time.Unix(ts, 0))
	if age > timestampTolerance || age < -timestampTolerance {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
