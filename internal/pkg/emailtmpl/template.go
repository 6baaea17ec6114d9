// Package emailtmpl renders generated report text into the HTML document
// delivered by the mail client and served by the preview endpoint.
package emailtmpl

import (
	"html/template"
	"strings"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:24px 0;">
<tr><td align="center">
<table role="presentation" width="640" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
<tr><td style="background-color:#1a1f36;padding:24px 32px;">
<h1 style="margin:0;color:#ffffff;font-size:20px;">{{.Title}}</h1>
{{if .Badge}}<span style="display:inline-block;margin-top:8px;padding:2px 10px;border-radius:10px;background-color:#e8590c;color:#ffffff;font-size:12px;text-transform:uppercase;">{{.Badge}}</span>{{end}}
</td></tr>
<tr><td style="padding:32px;color:#1a1f36;font-size:14px;line-height:1.6;">
{{.Body}}
</td></tr>
<tr><td style="padding:16px 32px;background-color:#f4f5f7;color:#6b7280;font-size:12px;">
Source: {{.Source}}
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`))

type reportData struct {
	Title  string
	Badge  string
	Body   template.HTML
	Source string
}

// Render wraps plain report text into the branded HTML email. reportType
// may be empty, in which case the type badge is omitted.
func Render(report, reportType, source string) (string, error) {
	escaped := template.HTMLEscapeString(report)
	body := strings.ReplaceAll(escaped, "\n", "<br>\n")

	data := reportData{
		Title:  "Ecommerce Analytics Report",
		Badge:  reportType,
		Body:   template.HTML(body),
		Source: source,
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
