package logger

import (
	"net/http"
	"strings"
)

const redacted = "[redacted]"

// Credential headers are replaced outright. X-User-Id is an opaque id and
// stays readable so failures can be traced to a driver.
var redactedHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
}

// MaskHeaders flattens headers for logging with credentials redacted.
func MaskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if _, ok := redactedHeaders[strings.ToLower(name)]; ok {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ",")
	}
	return out
}
