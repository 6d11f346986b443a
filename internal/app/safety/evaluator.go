// Package safety evaluates destination URLs before they are shortened and
// feeds the preview interstitial. Only two of the five checks can block:
// format validation and a confirmed threat-list match. Everything else
// degrades to warnings so a flaky WHOIS server or an http-only site never
// prevents link creation.
package safety

import (
	"context"
	"fmt"
	"strings"

	infraProm "github.com/GSMS-B/ProjectQR/internal/infra/prometheus"
	"go.uber.org/zap"
)

// Evaluation is the merged verdict over every check.
type Evaluation struct {
	URL          string        `json:"url"`
	Safe         bool          `json:"safe"`
	Errors       []string      `json:"errors,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	Format       FormatResult  `json:"format"`
	Threat       *ThreatResult `json:"threat,omitempty"`
	TLS          *TLSResult    `json:"tls,omitempty"`
	DomainAge    *AgeResult    `json:"domain_age,omitempty"`
	Reachability *ReachResult  `json:"reachability,omitempty"`
}

// PreviewInfo is the trimmed verdict shown on the interstitial page.
type PreviewInfo struct {
	HasTLS        bool     `json:"has_tls"`
	TLSIssuer     string   `json:"tls_issuer,omitempty"`
	Safe          bool     `json:"safe"`
	Threats       []string `json:"threats,omitempty"`
	DomainAgeDays int      `json:"domain_age_days,omitempty"`
	DomainCreated string   `json:"domain_created,omitempty"`
	NewDomain     bool     `json:"new_domain"`
}

// Evaluator runs the URL safety pipeline.
type Evaluator struct {
	logger  *zap.Logger
	threats *ThreatChecker

	// check functions are swapped out in tests.
	tlsCheck   func(string) TLSResult
	ageCheck   func(string) AgeResult
	reachCheck func(context.Context, string) ReachResult
}

// NewEvaluator wires the pipeline; threats carries its own cache.
func NewEvaluator(logger *zap.Logger, threats *ThreatChecker) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		logger:     logger,
		threats:    threats,
		tlsCheck:   CheckTLS,
		ageCheck:   CheckDomainAge,
		reachCheck: CheckReachable,
	}
}

// Evaluate runs every check and merges the verdict. checkReachability adds
// the slower HEAD probe.
func (e *Evaluator) Evaluate(ctx context.Context, url string, checkReachability bool) *Evaluation {
	result := &Evaluation{URL: url, Safe: true}

	result.Format = CheckFormat(url)
	if !result.Format.Valid {
		result.Safe = false
		result.Errors = append(result.Errors, result.Format.Reason)
		infraProm.SafetyVerdicts.WithLabelValues("unsafe").Inc()
		return result
	}

	threat := e.threats.Check(ctx, url)
	result.Threat = &threat
	if !threat.Safe {
		result.Safe = false
		result.Errors = append(result.Errors,
			"flagged as malicious: "+strings.Join(threat.Threats, ", "))
	}

	tlsResult := e.tlsCheck(url)
	result.TLS = &tlsResult
	if !tlsResult.HasTLS {
		result.Warnings = append(result.Warnings, "no HTTPS (connection not encrypted)")
	} else if tlsResult.Expired {
		result.Warnings = append(result.Warnings, "TLS certificate has expired")
	}

	age := e.ageCheck(url)
	result.DomainAge = &age
	if age.Suspicious {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("domain registered less than %d days ago", suspiciousAgeDays))
	} else if age.New {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("domain registered less than %d days ago", newDomainDays))
	}

	if checkReachability {
		reach := e.reachCheck(ctx, url)
		result.Reachability = &reach
		if !reach.Reachable {
			result.Warnings = append(result.Warnings, "URL may not be reachable: "+reach.Note)
		}
	}

	verdict := "safe"
	if !result.Safe {
		verdict = "unsafe"
	}
	infraProm.SafetyVerdicts.WithLabelValues(verdict).Inc()

	e.logger.Debug("url evaluated",
		zap.String("url", url),
		zap.Bool("safe", result.Safe),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result
}

// Preview runs the checks the interstitial page displays, skipping format
// validation and reachability.
func (e *Evaluator) Preview(ctx context.Context, url string) *PreviewInfo {
	tlsResult := e.tlsCheck(url)
	threat := e.threats.Check(ctx, url)
	age := e.ageCheck(url)

	info := &PreviewInfo{
		HasTLS:    tlsResult.HasTLS,
		TLSIssuer: tlsResult.Issuer,
		Safe:      threat.Safe,
		Threats:   threat.Threats,
		NewDomain: age.New,
	}
	if age.Known {
		info.DomainAgeDays = age.AgeDays
		info.DomainCreated = age.Created
	}
	return info
}
