package safety

import (
	"context"
	"net/http"
	"time"
)

const reachabilityTimeout = 5 * time.Second

// ReachResult describes the outcome of an optional HEAD probe.
type ReachResult struct {
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"status_code,omitempty"`
	FinalURL   string `json:"final_url,omitempty"`
	Note       string `json:"note,omitempty"`
}

// CheckReachable sends a HEAD request following redirects. A failure here is
// only ever a warning.
func CheckReachable(ctx context.Context, raw string) ReachResult {
	reqCtx, cancel := context.WithTimeout(ctx, reachabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, raw, nil)
	if err != nil {
		return ReachResult{Note: "invalid request"}
	}
	req.Header.Set("User-Agent", "ProjectQR/1.0")

	client := &http.Client{Timeout: reachabilityTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return ReachResult{Note: "could not connect: " + err.Error()}
	}
	defer resp.Body.Close()

	return ReachResult{
		Reachable:  resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}
}
