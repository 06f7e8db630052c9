// Package richtext renders stored markdown content into sanitized HTML for
// detail views.
package richtext

import (
	"bytes"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/lewismosage/acna-gateway/internal/models"
)

var (
	engine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// raw HTML is passed through here and scrubbed by the policy below
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("table", "tr", "td", "th", "code", "pre")
		p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// Render converts markdown to sanitized HTML. Blank input renders as "".
// Conversion failures fall back to the sanitized source text.
func Render(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := engine.Convert([]byte(markdown), &buf); err != nil {
		return sanitizer().Sanitize(markdown)
	}
	return strings.TrimSpace(sanitizer().Sanitize(buf.String()))
}

// Sanitize scrubs an HTML fragment without markdown conversion
func Sanitize(fragment string) string {
	return sanitizer().Sanitize(fragment)
}

// Sections renders the clinical case sections of a case study. A nil case
// yields no sections.
func Sections(cc *models.ClinicalCase) []models.Section {
	sections := cc.Sections()
	for i := range sections {
		sections[i].HTML = Render(sections[i].Body)
	}
	return sections
}
