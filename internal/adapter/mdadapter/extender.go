package mdadapter

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type MediaExtension struct {
	r MediaResolver
}

func NewMediaExtension(r MediaResolver) goldmark.Extender {
	return &MediaExtension{r: r}
}

func (e *MediaExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewMediaDirectiveParser(), 500),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewMediaDirectiveRenderer(e.r), 500),
		),
	)
}
