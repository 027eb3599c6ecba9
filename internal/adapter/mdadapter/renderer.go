package mdadapter

import (
	"fmt"
	"html"
	"path"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// MediaResolver turns a media reference into a public URL.
type MediaResolver interface {
	MediaURL(ref string) (string, error)
}

type MediaDirectiveRenderer struct {
	r MediaResolver
}

func NewMediaDirectiveRenderer(r MediaResolver) renderer.NodeRenderer {
	return &MediaDirectiveRenderer{r: r}
}

func (r *MediaDirectiveRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMediaDirective, r.renderMediaDirective)
}

func (r *MediaDirectiveRenderer) renderMediaDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	directive, ok := n.(*MediaDirective)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *MediaDirective", n)
	}

	u, err := r.r.MediaURL(directive.Ref)
	if err != nil {
		return ast.WalkStop, fmt.Errorf("cannot resolve media %s: %w", directive.Ref, err)
	}

	fmt.Fprintf(w, `<a href="%s" class="media-link">%s</a>`,
		html.EscapeString(u), html.EscapeString(path.Base(directive.Ref)))

	return ast.WalkContinue, nil
}
