package common

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// IdempotencyHeader is the request header carrying the client token.
const IdempotencyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the accepted token size.
const MaxIdempotencyKeyLength = 120

// ErrIdempotencyKeyRequired is returned when the header is missing or blank.
var ErrIdempotencyKeyRequired = errors.New("idempotency key is required")

// IdempotencyKey extracts and normalizes the Idempotency-Key header.
func IdempotencyKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key == "" {
		return "", ValidationErr(ErrIdempotencyKeyRequired, "Idempotency-Key header is required")
	}
	if len(key) > MaxIdempotencyKeyLength {
		return "", Validation("Idempotency-Key must be at most %d characters", MaxIdempotencyKeyLength)
	}
	return key, nil
}

// CanonicalJSON re-encodes raw with sorted object keys and no insignificant whitespace.
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Fingerprint hashes the canonical form of a JSON payload.
func Fingerprint(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	canonical, err := CanonicalJSON(raw)
	if err != nil {
		return "", err
	}
	return Sha256Hex(string(canonical)), nil
}

// Sha256Hex hex-encodes the SHA-256 digest of input. Tokens are hashed with it
// before they reach lock keys or logs.
func Sha256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
