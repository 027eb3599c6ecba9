package mdadapter

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var mediaDirectiveRegexp = regexp.MustCompile(`^{{\s*media:\s*([^\s}]+)\s*}}`)

type MediaDirectiveParser struct{}

func NewMediaDirectiveParser() parser.InlineParser {
	return &MediaDirectiveParser{}
}

func (s *MediaDirectiveParser) Trigger() []byte {
	return []byte{'{'}
}

func (s *MediaDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()

	matches := mediaDirectiveRegexp.FindSubmatch(line)
	if matches == nil {
		return nil
	}

	block.Advance(len(matches[0]))

	return &MediaDirective{Ref: string(matches[1])}
}
