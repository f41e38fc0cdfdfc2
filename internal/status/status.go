// Package status rolls per-document editorial status up into part-level and
// book-level completion metrics.
//
// Weights: complete 1.0, revised 0.66, draft 0.33, planned 0. Every document
// weighs the same regardless of length or estimated read time; read-time
// estimates are self-reported and unreliable, so simplicity wins over false
// precision. Chapters that structurally do not exist yet are excluded from
// the denominator entirely; frontmatter-only stubs count as planned.
package status

import (
	"git.home.luguber.info/inful/bookbuilder/internal/document"
	"git.home.luguber.info/inful/bookbuilder/internal/graph"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// Aggregate computes completion metrics for the graph. The result is
// deterministic: the same document set always yields bit-identical
// percentages, since iteration follows graph order and weights are fixed.
func Aggregate(g *graph.ContentGraph) *report.Completion {
	completion := &report.Completion{
		Chapters:   g.ChapterCount(),
		Appendices: len(g.Appendices),
	}

	var totalWeight float64
	var totalDocs int

	for _, part := range g.Parts {
		var partWeight float64
		for _, ch := range part.Chapters {
			partWeight += weightOf(ch)
		}
		percent := 0.0
		if len(part.Chapters) > 0 {
			percent = partWeight / float64(len(part.Chapters)) * 100
		}
		completion.Parts = append(completion.Parts, report.PartCompletion{
			Part:      part.Number,
			Documents: len(part.Chapters),
			Percent:   percent,
		})
		totalWeight += partWeight
		totalDocs += len(part.Chapters)
	}

	for _, app := range g.Appendices {
		totalWeight += weightOf(app)
		totalDocs++
	}

	if totalDocs > 0 {
		completion.OverallPercent = totalWeight / float64(totalDocs) * 100
	}
	return completion
}

// weightOf returns a document's completion contribution. A stub is a
// placeholder regardless of what its status field claims.
func weightOf(doc *document.Document) float64 {
	if doc.Stub {
		return 0
	}
	return doc.Status().CompletionWeight()
}
