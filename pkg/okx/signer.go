package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"okxtrader/pkg/core"
)

// Authenticated request header names.
const (
	headerContentType = "Content-Type"
	headerAPIKey      = "OK-ACCESS-KEY"
	headerSignature   = "OK-ACCESS-SIGN"
	headerTimestamp   = "OK-ACCESS-TIMESTAMP"
	headerPassphrase  = "OK-ACCESS-PASSPHRASE"
	headerSimulated   = "x-simulated-trading"
)

// Sign computes the OKX request signature: the base64-encoded HMAC-SHA256
// digest of timestamp || UPPERCASE(method) || path || body. The path must be
// the exact request path including any query string, and body must be the
// empty string for requests without a payload. Any deviation from this
// concatenation produces a signature the exchange rejects.
func Sign(secret, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + strings.ToUpper(method) + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Headers assembles the fixed authenticated header set. The simulated-trading
// flag is always written explicitly since it switches between paper and live
// trading and must never be defaulted silently.
func Headers(creds *core.Credentials, timestamp, signature string, simulated bool) map[string]string {
	sim := "0"
	if simulated {
		sim = "1"
	}
	return map[string]string{
		headerContentType: "application/json",
		headerAPIKey:      creds.APIKey,
		headerSignature:   signature,
		headerTimestamp:   timestamp,
		headerPassphrase:  creds.Passphrase,
		headerSimulated:   sim,
	}
}

// checkCredentials verifies all three credential parts are present.
// This runs before any network call so a missing credential surfaces as a
// configuration error, never as a remote authentication failure.
func checkCredentials(creds *core.Credentials) error {
	if !creds.Complete() {
		return core.NewExchangeError(core.ErrorTypeConfiguration, 0,
			"API key, secret key and passphrase are all required for signed requests")
	}
	return nil
}
