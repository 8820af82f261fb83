package logging

import (
	"net/http"
	"regexp"
	"strings"
)

// credentialHeaders are never written to logs in clear text.
var credentialHeaders = map[string]struct{}{
	"Authorization":       {},
	"Proxy-Authorization": {},
	"Cookie":              {},
	"Set-Cookie":          {},
	"X-Api-Key":           {},
}

var bearerPattern = regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`)

// RedactHeaders flattens headers into a loggable map with credential
// values masked. Bearer tokens are masked in any header.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, values := range h {
		if _, secret := credentialHeaders[http.CanonicalHeaderKey(k)]; secret {
			out[k] = "***"
			continue
		}
		out[k] = bearerPattern.ReplaceAllString(strings.Join(values, ", "), "Bearer ***")
	}
	return out
}
