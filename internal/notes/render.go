package notes

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// htmlTemplate is the template for the complete HTML document.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>

    <style>
        :root {
            --text-color: #1a1a1a;
            --code-bg: #f5f5f5;
            --border-color: #e0e0e0;
        }

        * {
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: var(--text-color);
            background-color: {{.Color}};
            max-width: 800px;
            margin: 0 auto;
            padding: 2rem 1rem;
        }

        article {
            background: #ffffff;
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 1.5rem;
        }

        code {
            font-family: 'SF Mono', Monaco, 'Cascadia Code', 'Roboto Mono', Consolas, monospace;
            background-color: var(--code-bg);
            padding: 0.2em 0.4em;
            border-radius: 3px;
            font-size: 0.9em;
        }

        pre {
            background-color: var(--code-bg);
            padding: 1rem;
            border-radius: 6px;
            overflow-x: auto;
        }

        blockquote {
            margin: 1em 0;
            padding: 0.5em 1em;
            border-left: 4px solid var(--border-color);
            opacity: 0.85;
        }
    </style>
</head>
<body>
    <article>
        {{.Content}}
    </article>
</body>
</html>`

// templateData holds the data for the HTML template.
type templateData struct {
	Title   string
	Color   template.CSS
	Content template.HTML
}

var sanitizer = bluemonday.UGCPolicy()

// RenderNoteHTML renders a note's text as a complete HTML document, treating
// the text as markdown. The rendered body is sanitized with bluemonday, so
// script tags and event handlers in note text never reach the browser.
func RenderNoteHTML(note Note) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(note.Text))

	htmlFlags := mdhtml.CommonFlags | mdhtml.HrefTargetBlank
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})

	contentHTML := sanitizer.SanitizeBytes(markdown.Render(doc, renderer))

	color := note.Color
	if color == "" {
		color = DefaultColor
	}

	title, _, _ := strings.Cut(strings.TrimSpace(note.Text), "\n")
	if title == "" {
		title = "Note"
	}

	tmpl := template.Must(template.New("html").Parse(htmlTemplate))
	var buf bytes.Buffer
	data := templateData{
		Title:   html.EscapeString(TruncateRunes(title, 80)),
		Color:   template.CSS(sanitizeColor(color)),
		Content: template.HTML(contentHTML),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return []byte("<!DOCTYPE html><html><head><title>Error</title></head><body><h1>Error rendering page</h1></body></html>")
	}
	return buf.Bytes()
}

// sanitizeColor restricts background colors to the known palette.
func sanitizeColor(color string) string {
	for _, c := range Palette {
		if c == color {
			return c
		}
	}
	return DefaultColor
}
