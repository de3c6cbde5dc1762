package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const signatureScheme = "v1"

var (
	ErrMissingHeader    = errors.New("webhook has no Stripe-Signature header")
	ErrInvalidHeader    = errors.New("webhook has invalid Stripe-Signature header")
	ErrNoValidSignature = errors.New("webhook had no valid signature")
	ErrTooOld           = errors.New("webhook timestamp is outside the tolerance zone")
)

// VerifySignature checks a Stripe-Signature header of the form
// "t=<unix>,v1=<hex>[,v1=<hex>...]" against payload. A tolerance of zero
// disables the timestamp check.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if strings.TrimSpace(header) == "" {
		return ErrMissingHeader
	}

	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	expected := computeSignature(timestamp, payload, secret)
	valid := false
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			valid = true
			break
		}
	}
	if !valid {
		return ErrNoValidSignature
	}

	if tolerance > 0 && now.Sub(timestamp) > tolerance {
		return ErrTooOld
	}
	return nil
}

// SignPayload builds a header value for payload signed at t, in the format
// VerifySignature accepts.
func SignPayload(payload []byte, secret string, t time.Time) string {
	sig := computeSignature(t, payload, secret)
	return "t=" + strconv.FormatInt(t.Unix(), 10) + "," + signatureScheme + "=" + hex.EncodeToString(sig)
}

func parseSignatureHeader(header string) (time.Time, [][]byte, error) {
	var (
		timestamp  time.Time
		haveTime   bool
		signatures [][]byte
	)

	for _, pair := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return time.Time{}, nil, ErrInvalidHeader
		}
		switch key {
		case "t":
			unix, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return time.Time{}, nil, ErrInvalidHeader
			}
			timestamp = time.Unix(unix, 0)
			haveTime = true
		case signatureScheme:
			sig, err := hex.DecodeString(value)
			if err != nil {
				// Unreadable signatures are skipped; another v1 entry may match.
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if !haveTime {
		return time.Time{}, nil, ErrInvalidHeader
	}
	if len(signatures) == 0 {
		return time.Time{}, nil, ErrNoValidSignature
	}
	return timestamp, signatures, nil
}

func computeSignature(t time.Time, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(t.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
