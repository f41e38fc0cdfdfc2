package graph

import (
	"regexp"
	"strconv"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Reference is an explicit in-content mention of another structural unit
// ("Chapter 7", "Appendix B").
type Reference struct {
	Chapter  int    // 0 when the reference targets an appendix
	Appendix string // empty when the reference targets a chapter
}

var (
	chapterRefRe  = regexp.MustCompile(`\bChapter\s+(\d+)\b`)
	appendixRefRe = regexp.MustCompile(`\bAppendix\s+([A-Z])\b`)
)

// ExtractReferences parses a Markdown body and collects chapter/appendix
// mentions from its prose.
//
// Walking the Goldmark AST and matching only text nodes keeps code blocks
// and inline code out of the scan; a C listing that happens to contain
// "Chapter 9" in a string literal is not a cross-reference.
func ExtractReferences(body []byte) []Reference {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var refs []Reference
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		textNode, ok := n.(*gmast.Text)
		if !ok {
			return gmast.WalkContinue, nil
		}
		// Inline code spans carry their content as Text children.
		if parent := textNode.Parent(); parent != nil && parent.Kind() == gmast.KindCodeSpan {
			return gmast.WalkContinue, nil
		}
		segment := textNode.Segment.Value(body)

		for _, m := range chapterRefRe.FindAllSubmatch(segment, -1) {
			if n, err := strconv.Atoi(string(m[1])); err == nil {
				refs = append(refs, Reference{Chapter: n})
			}
		}
		for _, m := range appendixRefRe.FindAllSubmatch(segment, -1) {
			refs = append(refs, Reference{Appendix: string(m[1])})
		}
		return gmast.WalkContinue, nil
	})

	return refs
}
