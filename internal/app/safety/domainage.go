package safety

import (
	"net/url"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

const (
	whoisTimeout      = 5 * time.Second
	newDomainDays     = 30
	suspiciousAgeDays = 7
)

// AgeResult describes how long ago the destination's domain was registered.
// Known is false when WHOIS gives no usable creation date.
type AgeResult struct {
	Known      bool   `json:"known"`
	AgeDays    int    `json:"age_days,omitempty"`
	Created    string `json:"created,omitempty"`
	New        bool   `json:"new,omitempty"`
	Suspicious bool   `json:"suspicious,omitempty"`
	Note       string `json:"note,omitempty"`
}

// CheckDomainAge resolves the registration date via WHOIS. Freshly registered
// domains are the classic phishing tell: under 30 days warns, under 7 days is
// additionally marked suspicious.
func CheckDomainAge(raw string) AgeResult {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return AgeResult{Note: "no domain to check"}
	}
	domain := strings.TrimPrefix(parsed.Hostname(), "www.")

	client := whois.NewClient()
	client.SetTimeout(whoisTimeout)

	response, err := client.Whois(domain)
	if err != nil {
		return AgeResult{Note: "whois lookup failed"}
	}

	info, err := whoisparser.Parse(response)
	if err != nil || info.Domain == nil || info.Domain.CreatedDateInTime == nil {
		return AgeResult{Note: "creation date not available"}
	}

	created := info.Domain.CreatedDateInTime.UTC()
	ageDays := int(time.Since(created).Hours() / 24)

	return AgeResult{
		Known:      true,
		AgeDays:    ageDays,
		Created:    created.Format("2006-01-02"),
		New:        ageDays < newDomainDays,
		Suspicious: ageDays < suspiciousAgeDays,
	}
}
