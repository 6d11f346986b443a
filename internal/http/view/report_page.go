package view

import (
	"bytes"
	"html/template"
)

// ReportPageData provides the dynamic fields for the abuse report form.
type ReportPageData struct {
	Code      string
	TargetURL string
	SubmitURL string
	Submitted bool
}

var reportPageTmpl = template.Must(template.New("report_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{if .Submitted}}Report received{{else}}Report a link{{end}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
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
			width: min(520px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 { font-size: 1.5rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		.destination {
			margin: 20px 0;
			padding: 14px;
			border-radius: 12px;
			background: rgba(248, 113, 113, 0.07);
			border: 1px solid rgba(248, 113, 113, 0.25);
			word-break: break-all;
			font-size: 0.9rem;
		}
		textarea {
			width: 100%;
			min-height: 120px;
			border-radius: 12px;
			border: 1px solid var(--border);
			background: rgba(255, 255, 255, 0.04);
			color: var(--text);
			padding: 12px;
			font: inherit;
			resize: vertical;
		}
		button {
			margin-top: 16px;
			padding: 0 28px;
			height: 48px;
			border-radius: 999px;
			border: none;
			background: linear-gradient(120deg, #f87171, #ef4444);
			color: #050708;
			font-weight: 600;
			cursor: pointer;
		}
	</style>
</head>
<body>
	<div class="card">
		{{if .Submitted}}
		<h1>Thanks for the report</h1>
		<p>Our team will review <strong>/{{.Code}}</strong> shortly.</p>
		{{else}}
		<h1>Report /{{.Code}}</h1>
		<p>Tell us why this link should be reviewed.</p>
		<div class="destination">{{.TargetURL}}</div>
		<form method="post" action="{{.SubmitURL}}">
			<textarea name="reason" placeholder="Phishing, malware, scam..." required></textarea>
			<button type="submit">Submit report</button>
		</form>
		{{end}}
	</div>
</body>
</html>
`))

// RenderReportPage expands the report form template with the provided data.
func RenderReportPage(data ReportPageData) (string, error) {
	var buf bytes.Buffer
	if err := reportPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
