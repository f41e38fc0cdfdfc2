package render

import (
	"bytes"
	"fmt"

	"git.home.luguber.info/inful/bookbuilder/internal/graph"
)

// Assemble flattens the content graph into a single Markdown source in
// reading order: parts in order, chapters in order within each part, then
// appendices. External renderers consume this one file rather than the tree.
func Assemble(g *graph.ContentGraph, title string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)

	for _, part := range g.Parts {
		fmt.Fprintf(&buf, "# Part %d\n\n", part.Number)
		for _, ch := range part.Chapters {
			writeSection(&buf, ch.Meta.Title, ch.Body)
		}
	}

	if len(g.Appendices) > 0 {
		buf.WriteString("# Appendices\n\n")
		for _, app := range g.Appendices {
			writeSection(&buf, fmt.Sprintf("Appendix %s: %s", app.Position.Appendix, app.Meta.Title), app.Body)
		}
	}

	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, heading string, body []byte) {
	fmt.Fprintf(buf, "## %s\n\n", heading)
	buf.Write(bytes.TrimSpace(body))
	buf.WriteString("\n\n")
}
