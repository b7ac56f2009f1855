// Package svix verifies webhook deliveries signed with the Svix scheme used by Clerk.
//
// A delivery carries three headers: svix-id, svix-timestamp (Unix seconds) and
// svix-signature, a space separated list of "v1,<base64 HMAC-SHA256>" entries.
// The signed content is id + "." + timestamp + "." + body, where body is the
// request payload exactly as received.
package svix

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names set by the identity provider on every delivery.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

const (
	secretPrefix     = "whsec_"
	signatureVersion = "v1"

	// DefaultTolerance bounds the allowed skew between svix-timestamp and the local clock.
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrMissingSecret          = errors.New("webhook secret is required")
	ErrMissingHeaders         = errors.New("missing svix headers")
	ErrInvalidTimestamp       = errors.New("invalid svix-timestamp header")
	ErrTimestampTooOld        = errors.New("message timestamp too old")
	ErrTimestampTooNew        = errors.New("message timestamp too new")
	ErrInvalidSignatureHeader = errors.New("no v1 signature in svix-signature header")
	ErrInvalidSignature       = errors.New("no matching signature found")
)

// Verifier checks signatures against a single pre-shared secret. It holds no
// mutable state and is safe for concurrent use.
type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// Option customises a Verifier.
type Option func(*Verifier)

// WithTolerance overrides DefaultTolerance. Non-positive values are ignored.
func WithTolerance(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.tolerance = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier builds a Verifier from the secret shown in the Clerk dashboard.
func NewVerifier(secret string, opts ...Option) (*Verifier, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		key:       key,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// decodeSecret strips the whsec_ prefix and base64-decodes the rest. Secrets
// that are not base64 are used verbatim.
func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}

	raw := strings.TrimPrefix(secret, secretPrefix)
	if raw == "" {
		return nil, ErrMissingSecret
	}
	if key, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return key, nil
	}
	if key, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return key, nil
	}
	return []byte(raw), nil
}

// Tolerance reports the accepted timestamp skew.
func (v *Verifier) Tolerance() time.Duration {
	return v.tolerance
}

// Verify returns nil when body carries a valid signature for the given headers.
// body must be the exact bytes received on the wire.
func (v *Verifier) Verify(header http.Header, body []byte) error {
	if missing := MissingHeaders(header); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}
	msgID := header.Get(HeaderID)
	rawTimestamp := header.Get(HeaderTimestamp)
	rawSignature := header.Get(HeaderSignature)

	ts, err := v.checkTimestamp(rawTimestamp)
	if err != nil {
		return err
	}

	expected := v.sign(msgID, ts, body)

	found := false
	for _, entry := range strings.Fields(rawSignature) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != signatureVersion {
			continue
		}
		found = true

		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	if !found {
		return ErrInvalidSignatureHeader
	}
	return ErrInvalidSignature
}

// MissingHeaders lists the required svix headers absent from header.
func MissingHeaders(header http.Header) []string {
	var missing []string
	for _, name := range []string{HeaderID, HeaderTimestamp, HeaderSignature} {
		if header.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Sign returns the svix-signature header value for body sent with msgID at ts.
func (v *Verifier) Sign(msgID string, ts time.Time, body []byte) string {
	mac := v.sign(msgID, ts.Unix(), body)
	return signatureVersion + "," + base64.StdEncoding.EncodeToString(mac)
}

// Headers returns the full header set a sender would attach to body.
func (v *Verifier) Headers(msgID string, ts time.Time, body []byte) http.Header {
	h := make(http.Header, 3)
	h.Set(HeaderID, msgID)
	h.Set(HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderSignature, v.Sign(msgID, ts, body))
	return h
}

func (v *Verifier) sign(msgID string, ts int64, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(msgID))
	mac.Write([]byte{'.'})
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

func (v *Verifier) checkTimestamp(raw string) (int64, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}

	now := v.now().Unix()
	window := int64(v.tolerance / time.Second)
	switch {
	case now-ts > window:
		return 0, ErrTimestampTooOld
	case ts-now > window:
		return 0, ErrTimestampTooNew
	}
	return ts, nil
}
