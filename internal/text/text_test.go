package text

import (
	"strings"
	"testing"
)

func TestRenderBodyMarkdown(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis", "*hi*", "<em>hi</em>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"code span", "`x := 1`", "<code>x := 1</code>"},
		{"heading stays text", "# not a heading", "# not a heading"},
		{"raw html escaped", "<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := p.RenderBody(tt.in)
			if !strings.Contains(got, tt.want) {
				t.Errorf("RenderBody(%q) = %q, want substring %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderBodyStripsScripts(t *testing.T) {
	p := New()
	got, _ := p.RenderBody(`hello <script>alert(1)</script>`)
	if strings.Contains(got, "<script") || strings.Contains(got, "alert(1)</script>") {
		t.Errorf("script survived: %q", got)
	}
}

func TestQuoteLinks(t *testing.T) {
	p := New()
	got, quoted := p.RenderBody(">>12 agreed, see also >>34 and >>12 again")

	if !strings.Contains(got, `href="#reply-12"`) || !strings.Contains(got, `href="#reply-34"`) {
		t.Errorf("missing quote anchors: %q", got)
	}
	if len(quoted) != 2 || quoted[0] != 12 || quoted[1] != 34 {
		t.Errorf("quoted = %v, want [12 34]", quoted)
	}
}

func TestSanitizePlain(t *testing.T) {
	if got := SanitizePlain("  <em>name</em> "); got != "name" {
		t.Errorf("got %q", got)
	}
}
