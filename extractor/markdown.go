package extractor

import (
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minReadableLength is the shortest readability text accepted as the main
// content. Shorter output means the algorithm missed; the full page is
// converted instead.
const minReadableLength = 50

// Markdowner renders the readable main content of a page as Markdown.
// It is safe for concurrent use.
type Markdowner struct {
	conv *converter.Converter
}

// NewMarkdowner builds a converter with the commonmark and table plugins.
func NewMarkdowner() *Markdowner {
	return &Markdowner{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Markdown converts d to Markdown with links resolved against d.Base.
func (m *Markdowner) Markdown(d *Document) (string, error) {
	content := d.HTML
	article, err := readability.FromReader(strings.NewReader(d.HTML), d.Base)
	switch {
	case err != nil:
		slog.Debug("readability failed, converting full page", "url", d.Base.String(), "error", err)
	case len(strings.TrimSpace(article.TextContent)) < minReadableLength:
		slog.Debug("readability content too short, converting full page", "url", d.Base.String())
	default:
		content = article.Content
	}
	md, err := m.conv.ConvertString(content, converter.WithDomain(d.Base.Scheme+"://"+d.Base.Host))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
