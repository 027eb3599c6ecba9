package mdadapter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/jgivc/eduvance/internal/entity"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

type mdAdapter struct {
	md  goldmark.Markdown
	log *slog.Logger
}

// NewMDAdapter builds the markdown renderer. With a nil resolver media
// directives are left as plain text.
func NewMDAdapter(r MediaResolver, log *slog.Logger) *mdAdapter {
	extensions := []goldmark.Extender{
		extension.GFM,
		&frontmatter.Extender{},
	}
	if r != nil {
		extensions = append(extensions, NewMediaExtension(r))
	}

	return &mdAdapter{
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
		log: log.With(slog.String("item", "MDAdapter")),
	}
}

func (a *mdAdapter) Render(src []byte) (*entity.Document, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	if err := a.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	doc := &entity.Document{HTML: buf.String()}

	if fm := frontmatter.Get(ctx); fm != nil {
		var meta entity.CourseMeta
		if err := fm.Decode(&meta); err != nil {
			return nil, fmt.Errorf("cannot decode frontmatter: %w", err)
		}
		doc.Meta = &meta
	}

	return doc, nil
}

// RenderString is Render for callers that only need the HTML.
func (a *mdAdapter) RenderString(src string) (string, error) {
	doc, err := a.Render([]byte(src))
	if err != nil {
		return "", err
	}

	return doc.HTML, nil
}
