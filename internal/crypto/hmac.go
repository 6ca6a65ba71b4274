package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// APIKeyHeader carries the API key on every signed request.
const APIKeyHeader = "X-MBX-APIKEY"

// HMACAuth holds the credentials for HMAC-SHA256 signed exchange requests.
type HMACAuth struct {
	Key    string
	Secret string
}

// Sign returns the hex encoded HMAC-SHA256 of query keyed by the secret.
func (h *HMACAuth) Sign(query string) string {
	return hmacSHA256Hex([]byte(h.Secret), query)
}

// SignParams stamps params with the current timestamp and recvWindow (when
// positive) and returns the encoded query with the signature appended.
func (h *HMACAuth) SignParams(params url.Values, recvWindow time.Duration) string {
	return h.SignParamsAt(params, recvWindow, time.Now().UnixMilli())
}

// SignParamsAt is like SignParams but lets the caller supply the Unix
// millisecond timestamp (useful for deterministic testing).
func (h *HMACAuth) SignParamsAt(params url.Values, recvWindow time.Duration, unixMilli int64) string {
	if recvWindow > 0 {
		params.Set("recvWindow", strconv.FormatInt(recvWindow.Milliseconds(), 10))
	}
	params.Set("timestamp", strconv.FormatInt(unixMilli, 10))
	query := params.Encode()
	return query + "&signature=" + h.Sign(query)
}

// Headers returns the authentication headers for a signed request.
func (h *HMACAuth) Headers() map[string]string {
	return map[string]string{APIKeyHeader: h.Key}
}

func hmacSHA256Hex(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}
