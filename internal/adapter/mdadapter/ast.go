package mdadapter

import (
	"github.com/yuin/goldmark/ast"
)

var KindMediaDirective = ast.NewNodeKind("MediaDirective")

// MediaDirective is `{{ media: owner/repo/path/to/file.pdf }}` in course text.
type MediaDirective struct {
	ast.BaseInline
	Ref string
}

func (n *MediaDirective) Kind() ast.NodeKind {
	return KindMediaDirective
}

func (n *MediaDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Ref": n.Ref,
	}, nil)
}
