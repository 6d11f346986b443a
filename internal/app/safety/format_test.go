package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"https url", "https://example.com/path", true},
		{"http url", "http://example.com", true},
		{"url with port and query", "https://example.com:8443/a?b=c", true},
		{"javascript scheme", "javascript:alert(1)", false},
		{"data scheme", "data:text/html;base64,PHNjcmlwdD4=", false},
		{"vbscript scheme", "vbscript:msgbox(1)", false},
		{"file scheme", "file:///etc/passwd", false},
		{"smuggled javascript", "https://example.com/?next=JAVASCRIPT:alert(1)", false},
		{"ftp scheme", "ftp://example.com/file", false},
		{"missing scheme", "example.com/path", false},
		{"missing host", "https://", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckFormat(tt.url)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}
