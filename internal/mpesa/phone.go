package mpesa

import "strings"

// NormalizePhone rewrites a phone number into the canonical international
// form the gateway expects: a leading "+" is stripped and a national trunk
// "0" becomes the country code "254". Anything else passes through
// unchanged — no length or digit validation, malformed input stays malformed.
// Idempotent under repeated application.
func NormalizePhone(raw string) string {
	p := strings.TrimPrefix(raw, "+")
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	return p
}
