// Package title derives a post title from the first markdown heading.
package title

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Fallback is used when a document has no usable heading.
const Fallback = "Untitled document"

// The meta extension consumes a leading front-matter block so that its
// closing delimiter can never turn the last YAML line into a setext heading.
var md = goldmark.New(
	goldmark.WithExtensions(meta.Meta),
)

// Extract parses source as markdown and returns the trimmed text of the first
// heading. ok is false when there is no heading or it has no text.
func Extract(source []byte) (string, bool) {
	pctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(pctx))

	var heading *ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = h
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if heading == nil {
		return "", false
	}

	title := strings.TrimSpace(inlineText(heading, source))
	return title, title != ""
}

// ExtractOr returns the first heading of source, or fallback.
func ExtractOr(source []byte, fallback string) string {
	if t, ok := Extract(source); ok {
		return t
	}
	return fallback
}

func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
