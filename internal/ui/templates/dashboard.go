// Package templates renders the dashboard markup. Components are plain
// templ.Components so handlers can render them into SSE patches.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Panel is one dashboard card bound to a tool.
type Panel struct {
	Tool  string
	Title string
}

// Row is one line of a panel table.
type Row []string

// SummaryID is the element id a tool's summary is patched into.
func SummaryID(tool string) string { return "summary-" + tool }

// TableID is the element id a tool's table is patched into.
func TableID(tool string) string { return "table-" + tool }

// Dashboard renders the full page. Each panel loads itself through
// /sse/refresh-all once the page initialises.
func Dashboard(title string, panels []Panel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		b.WriteString("<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", templ.EscapeString(title))
		fmt.Fprintf(&b, "<script type=\"module\" src=\"%s\"></script>\n", datastarScript)
		b.WriteString("<style>")
		b.WriteString(stylesheet)
		b.WriteString("</style>\n</head>\n")
		b.WriteString("<body data-init=\"@get('/sse/refresh-all')\">\n")
		fmt.Fprintf(&b, "<header><h1>%s</h1>", templ.EscapeString(title))
		b.WriteString("<button data-on-click=\"@get('/sse/refresh-all')\">Refresh</button></header>\n<main class=\"grid\">\n")
		for _, p := range panels {
			fmt.Fprintf(&b, "<section class=\"panel\" id=\"panel-%s\">\n", templ.EscapeString(p.Tool))
			fmt.Fprintf(&b, "<h2>%s</h2>\n", templ.EscapeString(p.Title))
			fmt.Fprintf(&b, "<p class=\"summary\" id=\"%s\">Loading...</p>\n", templ.EscapeString(SummaryID(p.Tool)))
			fmt.Fprintf(&b, "<div id=\"%s\"></div>\n", templ.EscapeString(TableID(p.Tool)))
			b.WriteString("</section>\n")
		}
		b.WriteString("</main>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Summary renders a tool's one-line summary.
func Summary(tool, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<p class=\"summary\" id=\"%s\">%s</p>",
			templ.EscapeString(SummaryID(tool)), templ.EscapeString(text))
		return err
	})
}

// Notice renders a rejected query in place of a summary.
func Notice(tool, message string, suggestions []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<p class=\"summary notice\" id=\"%s\">%s", templ.EscapeString(SummaryID(tool)), templ.EscapeString(message))
		if len(suggestions) > 0 {
			b.WriteString("<br><small>Try: ")
			for i, s := range suggestions {
				if i > 0 {
					b.WriteString("; ")
				}
				b.WriteString(templ.EscapeString(s))
			}
			b.WriteString("</small>")
		}
		b.WriteString("</p>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Table renders a panel table. Rows past limit are dropped.
func Table(tool string, headers []string, rows []Row, limit int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<div id=\"%s\"><table class=\"modern-table\">\n<thead><tr>", templ.EscapeString(TableID(tool)))
		for _, h := range headers {
			fmt.Fprintf(&b, "<th>%s</th>", templ.EscapeString(h))
		}
		b.WriteString("</tr></thead>\n<tbody>\n")
		for i, row := range rows {
			if limit > 0 && i >= limit {
				break
			}
			b.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(&b, "<td>%s</td>", templ.EscapeString(cell))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n</table></div>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1d2330}
header{display:flex;justify-content:space-between;align-items:center;padding:1rem 2rem;background:#1d2330;color:#fff}
header button{padding:.4rem 1rem;border:0;border-radius:4px;cursor:pointer}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(420px,1fr));gap:1rem;padding:1rem 2rem}
.panel{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.summary{color:#3a4254}
.notice{color:#a33}
.modern-table{width:100%;border-collapse:collapse;font-size:.9rem}
.modern-table th,.modern-table td{padding:.35rem .5rem;border-bottom:1px solid #e4e7ec;text-align:left}
`
