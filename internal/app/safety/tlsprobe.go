package safety

import (
	"crypto/tls"
	"net"
	"net/url"
	"time"
)

const tlsProbeTimeout = 5 * time.Second

// TLSResult describes the certificate presented by an https destination.
// A plain-http URL yields HasTLS false, which the evaluator treats as a
// warning, never a blocker.
type TLSResult struct {
	HasTLS     bool      `json:"has_tls"`
	Issuer     string    `json:"issuer,omitempty"`
	ValidUntil time.Time `json:"valid_until,omitempty"`
	Expired    bool      `json:"expired,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// CheckTLS performs a handshake against the URL's host and inspects the leaf
// certificate.
func CheckTLS(raw string) TLSResult {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "https" {
		return TLSResult{Note: "URL is not HTTPS"}
	}

	host := parsed.Hostname()
	port := parsed.Port()
	if port == "" {
		port = "443"
	}

	dialer := &net.Dialer{Timeout: tlsProbeTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, port), &tls.Config{
		ServerName: host,
	})
	if err != nil {
		return TLSResult{Note: "TLS handshake failed: " + err.Error()}
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return TLSResult{Note: "no peer certificate"}
	}

	leaf := certs[0]
	result := TLSResult{
		HasTLS:     true,
		ValidUntil: leaf.NotAfter,
		Expired:    time.Now().After(leaf.NotAfter),
	}
	if len(leaf.Issuer.Organization) > 0 {
		result.Issuer = leaf.Issuer.Organization[0]
	} else {
		result.Issuer = leaf.Issuer.CommonName
	}
	return result
}
