// Package text turns user-written bodies into safe HTML. Markdown support is
// deliberately narrow: emphasis, code spans, fenced code blocks and
// strikethrough. Headings, raw HTML and images stay plain text.
package text

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// quoteLinkRegex matches >>N after HTML escaping, a quote link to another
// reply in the same thread.
var quoteLinkRegex = regexp.MustCompile(`&gt;&gt;(\d+)`)

type Processor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Processor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)
	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile("^quote-link$")).OnElements("a")
	policy.AllowAttrs("data-reply-id").OnElements("a")
	policy.RequireNoFollowOnLinks(false)
	policy.AllowRelativeURLs(true)

	return &Processor{md: md, policy: policy}
}

// RenderBody renders a reply or thread body to sanitized HTML. Quote links
// become anchors to the referenced reply on the same page.
func (p *Processor) RenderBody(body string) (string, []int64) {
	rendered := p.render(body)
	linked, quoted := p.linkQuotes(rendered)
	return p.policy.Sanitize(linked), quoted
}

func (p *Processor) render(body string) string {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(body), &buf); err != nil {
		return body
	}
	return strings.TrimSpace(buf.String())
}

// linkQuotes rewrites >>N mentions into anchors and returns the distinct
// quoted reply ids in order of first mention.
func (p *Processor) linkQuotes(rendered string) (string, []int64) {
	var quoted []int64
	seen := make(map[int64]struct{})

	linked := quoteLinkRegex.ReplaceAllStringFunc(rendered, func(match string) string {
		submatch := quoteLinkRegex.FindStringSubmatch(match)
		id, err := strconv.ParseInt(submatch[1], 10, 64)
		if err != nil {
			return match
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			quoted = append(quoted, id)
		}
		return fmt.Sprintf(`<a class="quote-link" data-reply-id="%d" href="#reply-%d">&gt;&gt;%d</a>`, id, id, id)
	})
	return linked, quoted
}

// SanitizePlain strips every tag, for single-line fields like usernames and
// thread titles.
func SanitizePlain(s string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(s))
}
