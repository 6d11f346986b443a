package view

import (
	"bytes"
	"html/template"
)

// PreviewPageData provides the dynamic fields for the security interstitial.
type PreviewPageData struct {
	Title         string
	Code          string
	TargetURL     string
	Domain        string
	ContinueURL   string
	ReportURL     string
	HasTLS        bool
	TLSIssuer     string
	Safe          bool
	Threats       []string
	DomainAgeDays int
	DomainCreated string
	NewDomain     bool
}

var previewPageTmpl = template.Must(template.New("preview_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{if .Title}}{{.Title}}{{else}}Check before you go{{end}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			--ok: #4ade80;
			--warn: #fbbf24;
			--danger: #f87171;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(560px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 { font-size: 1.5rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		.destination {
			margin: 24px 0;
			padding: 18px;
			border-radius: 14px;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			word-break: break-all;
		}
		.destination-label {
			font-size: 0.82rem;
			text-transform: uppercase;
			letter-spacing: 0.08em;
			color: var(--muted);
			margin-bottom: 8px;
		}
		.badges { display: flex; flex-wrap: wrap; gap: 8px; margin: 18px 0; }
		.badge {
			font-size: 0.82rem;
			padding: 6px 12px;
			border-radius: 999px;
			border: 1px solid var(--border);
		}
		.badge.ok { color: var(--ok); border-color: rgba(74, 222, 128, 0.4); }
		.badge.warn { color: var(--warn); border-color: rgba(251, 191, 36, 0.4); }
		.badge.danger { color: var(--danger); border-color: rgba(248, 113, 113, 0.4); }
		.threats {
			margin: 12px 0;
			padding: 14px;
			border-radius: 12px;
			background: rgba(248, 113, 113, 0.1);
			border: 1px solid rgba(248, 113, 113, 0.35);
			color: var(--danger);
			font-size: 0.9rem;
		}
		.actions {
			display: flex;
			align-items: center;
			gap: 12px;
			margin-top: 24px;
			flex-wrap: wrap;
		}
		a.button {
			display: inline-flex;
			align-items: center;
			justify-content: center;
			padding: 0 28px;
			height: 48px;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			text-decoration: none;
			transition: transform 0.15s ease, opacity 0.15s ease;
		}
		a.button:hover { transform: translateY(-1px); opacity: 0.92; }
		a.report {
			color: var(--muted);
			font-size: 0.9rem;
			text-decoration: underline;
		}
		.meta {
			margin-top: 16px;
			font-size: 0.85rem;
			color: rgba(231, 236, 255, 0.65);
		}
	</style>
</head>
<body>
	<div class="card">
		<h1>Check before you go</h1>
		<p>Short link <strong>/{{.Code}}</strong> points to <strong>{{.Domain}}</strong>:</p>

		<div class="destination">
			<div class="destination-label">Destination</div>
			<div>{{.TargetURL}}</div>
		</div>

		<div class="badges">
			{{if .HasTLS}}
			<span class="badge ok">HTTPS{{if .TLSIssuer}} · {{.TLSIssuer}}{{end}}</span>
			{{else}}
			<span class="badge warn">No HTTPS</span>
			{{end}}
			{{if .Safe}}
			<span class="badge ok">No known threats</span>
			{{else}}
			<span class="badge danger">Flagged as malicious</span>
			{{end}}
			{{if .NewDomain}}
			<span class="badge warn">New domain{{if .DomainCreated}} · registered {{.DomainCreated}}{{end}}</span>
			{{else if .DomainCreated}}
			<span class="badge ok">Registered {{.DomainCreated}}</span>
			{{end}}
		</div>

		{{if .Threats}}
		<div class="threats">
			This destination was reported for:
			{{range .Threats}}<div>• {{.}}</div>{{end}}
		</div>
		{{end}}

		<div class="actions">
			<a class="button" href="{{.ContinueURL}}">Continue</a>
			<a class="report" href="{{.ReportURL}}">Report this link</a>
		</div>

		<div class="meta">You are leaving this site. Proceed only if the destination looks right.</div>
	</div>
</body>
</html>
`))

// RenderPreviewPage expands the interstitial template with the provided data.
func RenderPreviewPage(data PreviewPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Check before you go"
	}
	var buf bytes.Buffer
	if err := previewPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
