package safety

import (
	"net/url"
	"strings"
)

// dangerousSchemes are rejected anywhere in the URL, not just as the scheme,
// matching how smuggled payloads usually appear.
var dangerousSchemes = []string{"javascript:", "data:", "vbscript:", "file://"}

// FormatResult is the outcome of the syntactic URL check.
type FormatResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// CheckFormat validates scheme and host. This is one of the two checks that
// can block a URL outright.
func CheckFormat(raw string) FormatResult {
	lower := strings.ToLower(raw)
	for _, scheme := range dangerousSchemes {
		if strings.Contains(lower, scheme) {
			return FormatResult{Reason: "dangerous URL pattern: " + scheme}
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return FormatResult{Reason: "invalid URL: " + err.Error()}
	}
	if parsed.Scheme == "" {
		return FormatResult{Reason: "missing URL scheme (http/https)"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return FormatResult{Reason: "invalid scheme, only http/https allowed"}
	}
	if parsed.Host == "" {
		return FormatResult{Reason: "missing domain"}
	}

	return FormatResult{Valid: true}
}
