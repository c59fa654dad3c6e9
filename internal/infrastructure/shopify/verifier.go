package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// VerifyInstall verifies the HMAC Shopify attaches to the install/OAuth
// callback. Shopify computes it over the query string with the hmac and
// signature parameters removed, remaining keys sorted lexicographically and
// joined as key=value pairs with '&'. The digest is rendered as lowercase
// hex. Malformed input never panics, it just fails verification.
func VerifyInstall(params url.Values, providedHMAC string, secret string) bool {
	if providedHMAC == "" || secret == "" {
		return false
	}

	var keys []string
	for k := range params {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range params[k] {
			parts = append(parts, k+"="+strings.ReplaceAll(v, "&", "%26"))
		}
	}
	msg := strings.Join(parts, "&")

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(msg))
	expected := hex.EncodeToString(mac.Sum(nil))

	// hex digests compare case-insensitively; hmac.Equal is constant time.
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHMAC)))
}

// WebhookVerifier checks the per-message digest on webhook deliveries.
// The header carries base64(HMAC_SHA256(raw body)).
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier bound to the shared app secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify returns an error unless the header value matches the digest of the
// exact raw body bytes.
func (v *WebhookVerifier) Verify(body []byte, providedHMAC string) error {
	if !VerifyWebhook(body, providedHMAC, v.secret) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

// VerifyWebhook is the functional form of WebhookVerifier.Verify.
func VerifyWebhook(body []byte, providedHMAC string, secret string) bool {
	if providedHMAC == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(providedHMAC))
}
