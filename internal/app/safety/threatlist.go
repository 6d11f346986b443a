package safety

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	infraProm "github.com/GSMS-B/ProjectQR/internal/infra/prometheus"
	"go.uber.org/zap"
)

const (
	safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	threatCheckTimeout   = 5 * time.Second
)

// ThreatResult is the verdict of the threat-list lookup. API errors and a
// missing key both yield a safe verdict; only a confirmed match blocks.
type ThreatResult struct {
	Safe    bool     `json:"safe"`
	Threats []string `json:"threats,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// ThreatChecker queries Google Safe Browsing with a one-hour verdict cache.
type ThreatChecker struct {
	logger *zap.Logger
	client *http.Client
	cache  ThreatCache
	apiKey string

	// endpoint is swapped out in tests.
	endpoint string
}

// NewThreatChecker builds a checker; an empty apiKey disables lookups.
func NewThreatChecker(logger *zap.Logger, cache ThreatCache, apiKey string) *ThreatChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThreatChecker{
		logger:   logger,
		client:   &http.Client{Timeout: threatCheckTimeout},
		cache:    cache,
		apiKey:   apiKey,
		endpoint: safeBrowsingEndpoint,
	}
}

type threatMatchRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string            `json:"threatTypes"`
		PlatformTypes    []string            `json:"platformTypes"`
		ThreatEntryTypes []string            `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatMatchResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

// Check resolves the threat verdict for url, consulting the cache first.
func (c *ThreatChecker) Check(ctx context.Context, url string) ThreatResult {
	if c.apiKey == "" {
		return ThreatResult{Safe: true, Note: "threat list not configured"}
	}

	key := cacheKey(url)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			infraProm.ThreatCacheHits.WithLabelValues("hit").Inc()
			return *cached
		}
		infraProm.ThreatCacheHits.WithLabelValues("miss").Inc()
	}

	result := c.lookup(ctx, url)
	if c.cache != nil {
		c.cache.Set(ctx, key, &result)
	}
	return result
}

func (c *ThreatChecker) lookup(ctx context.Context, url string) ThreatResult {
	var payload threatMatchRequest
	payload.Client.ClientID = "projectqr"
	payload.Client.ClientVersion = "1.0.0"
	payload.ThreatInfo.ThreatTypes = []string{
		"MALWARE",
		"SOCIAL_ENGINEERING",
		"UNWANTED_SOFTWARE",
		"POTENTIALLY_HARMFUL_APPLICATION",
	}
	payload.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	payload.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	payload.ThreatInfo.ThreatEntries = []map[string]string{{"url": url}}

	body, err := json.Marshal(payload)
	if err != nil {
		return ThreatResult{Safe: true, Note: "request encode failed"}
	}

	reqCtx, cancel := context.WithTimeout(ctx, threatCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return ThreatResult{Safe: true, Note: "request build failed"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("threat list lookup failed", zap.Error(err))
		return ThreatResult{Safe: true, Note: "lookup failed"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("threat list returned non-200", zap.Int("status", resp.StatusCode))
		return ThreatResult{Safe: true, Note: "lookup unavailable"}
	}

	var parsed threatMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ThreatResult{Safe: true, Note: "response decode failed"}
	}

	if len(parsed.Matches) == 0 {
		return ThreatResult{Safe: true}
	}

	threats := make([]string, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		threats = append(threats, m.ThreatType)
	}
	return ThreatResult{Safe: false, Threats: threats}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
