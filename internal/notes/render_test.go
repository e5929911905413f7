package notes

import (
	"strings"
	"testing"
)

func TestRenderNoteHTML_Markdown(t *testing.T) {
	t.Parallel()

	note := Note{Text: "# Heading\n\nSome **bold** text", Color: "#97D2BC"}
	html := string(RenderNoteHTML(note))

	if !strings.Contains(html, "<h1") || !strings.Contains(html, "Heading") {
		t.Fatalf("heading not rendered: %s", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Fatalf("bold not rendered: %s", html)
	}
	if !strings.Contains(html, "#97D2BC") {
		t.Fatalf("note color missing: %s", html)
	}
}

func TestRenderNoteHTML_SanitizesScripts(t *testing.T) {
	t.Parallel()

	note := Note{Text: "hello <script>alert('xss')</script> <img src=x onerror=alert(1)>"}
	html := string(RenderNoteHTML(note))

	if strings.Contains(html, "<script>") {
		t.Fatalf("script tag survived sanitization: %s", html)
	}
	if strings.Contains(html, "onerror") {
		t.Fatalf("event handler survived sanitization: %s", html)
	}
}

func TestRenderNoteHTML_UnknownColorFallsBack(t *testing.T) {
	t.Parallel()

	note := Note{Text: "x", Color: "javascript:alert(1)"}
	html := string(RenderNoteHTML(note))
	if strings.Contains(html, "javascript:") {
		t.Fatalf("unsafe color reached output: %s", html)
	}
	if !strings.Contains(html, DefaultColor) {
		t.Fatal("fallback color missing")
	}
}
