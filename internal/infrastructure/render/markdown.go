// Package render converts chapter HTML for export.
package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// Markdown converts HTML fragments to Markdown.
type Markdown struct {
	conv *md.Converter
}

// NewMarkdown creates a converter. Link targets are kept as written; tables
// render as GitHub-flavored pipe tables.
func NewMarkdown() *Markdown {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	return &Markdown{conv: conv}
}

// ConvertHTML implements chapter.MarkdownConverter.
func (m *Markdown) ConvertHTML(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	out, err := m.conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(out), nil
}
