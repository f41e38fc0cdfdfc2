// Package graph assembles parsed canonical documents into the ordered
// structure of the book: parts holding chapters, plus appendices.
//
// The graph is rebuilt fully on every pipeline run from the current file set
// and is read-only once constructed; nothing downstream mutates it.
package graph

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/bookbuilder/internal/document"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

const stageName = "build_graph"

// Part is one ordered part of the book.
type Part struct {
	Number   int
	Chapters []*document.Document // ascending by chapter number
}

// ContentGraph is the ordered collection of canonical documents.
type ContentGraph struct {
	Parts      []*Part              // ascending by part number
	Appendices []*document.Document // ascending by appendix letter
	byKey      map[string]*document.Document
}

// Lookup resolves a structural position to its document.
func (g *ContentGraph) Lookup(pos document.Position) (*document.Document, bool) {
	doc, ok := g.byKey[pos.Key()]
	return doc, ok
}

// Documents returns all documents in reading order: parts in order, each
// part's chapters in order, then appendices.
func (g *ContentGraph) Documents() []*document.Document {
	var docs []*document.Document
	for _, part := range g.Parts {
		docs = append(docs, part.Chapters...)
	}
	docs = append(docs, g.Appendices...)
	return docs
}

// ChapterCount returns the total number of chapter documents.
func (g *ContentGraph) ChapterCount() int {
	n := 0
	for _, part := range g.Parts {
		n += len(part.Chapters)
	}
	return n
}

// HasChapter reports whether any part contains the given chapter number.
// Prose references say "Chapter 7" without naming a part, so resolution is
// book-wide.
func (g *ContentGraph) HasChapter(number int) bool {
	for _, part := range g.Parts {
		for _, ch := range part.Chapters {
			if ch.Position.Chapter == number {
				return true
			}
		}
	}
	return false
}

// HasAppendix reports whether the appendix letter exists.
func (g *ContentGraph) HasAppendix(id string) bool {
	_, ok := g.byKey[id]
	return ok
}

// Build assembles canonical documents into a ContentGraph.
//
// Two documents claiming the same (part, chapter) or appendix letter is an
// error naming both paths; the build cannot silently pick one. The result is
// independent of input order: the first occupant of a slot is decided by path
// ordering, and the issue always names both files. Numbering gaps and
// unresolved cross-references are warnings, since a book legitimately has
// unwritten chapters while it is being authored.
func Build(docs []*document.Document) (*ContentGraph, []report.Issue) {
	g := &ContentGraph{byKey: make(map[string]*document.Document)}
	var issues []report.Issue

	// Path order makes duplicate resolution deterministic regardless of how
	// the caller discovered the files.
	sorted := make([]*document.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	parts := make(map[int]*Part)
	for _, doc := range sorted {
		key := doc.Position.Key()
		if existing, dup := g.byKey[key]; dup {
			code := report.IssueDuplicateChapter
			if doc.Position.IsAppendix() {
				code = report.IssueDuplicateAppendix
			}
			issues = append(issues, report.Issue{
				Code:     code,
				Severity: report.SeverityError,
				Stage:    stageName,
				Path:     doc.Path,
				Message: fmt.Sprintf("both %s and %s claim %s",
					existing.Path, doc.Path, doc.Position),
			})
			continue
		}
		g.byKey[key] = doc

		if doc.Position.IsAppendix() {
			g.Appendices = append(g.Appendices, doc)
			continue
		}
		part, ok := parts[doc.Position.Part]
		if !ok {
			part = &Part{Number: doc.Position.Part}
			parts[doc.Position.Part] = part
			g.Parts = append(g.Parts, part)
		}
		part.Chapters = append(part.Chapters, doc)
	}

	sort.Slice(g.Parts, func(i, j int) bool { return g.Parts[i].Number < g.Parts[j].Number })
	for _, part := range g.Parts {
		sort.Slice(part.Chapters, func(i, j int) bool {
			return part.Chapters[i].Position.Chapter < part.Chapters[j].Position.Chapter
		})
	}
	sort.Slice(g.Appendices, func(i, j int) bool {
		return g.Appendices[i].Position.Appendix < g.Appendices[j].Position.Appendix
	})

	issues = append(issues, gapIssues(g)...)
	issues = append(issues, referenceIssues(g)...)
	return g, issues
}

// gapIssues warns about missing chapter numbers between 1 and the highest
// present chapter in each part.
func gapIssues(g *ContentGraph) []report.Issue {
	var issues []report.Issue
	for _, part := range g.Parts {
		present := make(map[int]bool, len(part.Chapters))
		max := 0
		for _, ch := range part.Chapters {
			present[ch.Position.Chapter] = true
			if ch.Position.Chapter > max {
				max = ch.Position.Chapter
			}
		}
		for n := 1; n <= max; n++ {
			if !present[n] {
				issues = append(issues, report.Issue{
					Code:     report.IssueChapterGap,
					Severity: report.SeverityWarning,
					Stage:    stageName,
					Message:  fmt.Sprintf("part %d has chapters up to %d but chapter %d is missing", part.Number, max, n),
				})
			}
		}
	}
	return issues
}

// referenceIssues warns about prose references to chapters or appendices
// that do not exist in the graph. Content drift is expected during active
// authoring and must not block builds.
func referenceIssues(g *ContentGraph) []report.Issue {
	var issues []report.Issue
	for _, doc := range g.Documents() {
		seen := make(map[string]bool)
		for _, ref := range ExtractReferences(doc.Body) {
			var resolved bool
			var label string
			if ref.Appendix != "" {
				resolved = g.HasAppendix(ref.Appendix)
				label = "Appendix " + ref.Appendix
			} else {
				resolved = g.HasChapter(ref.Chapter)
				label = fmt.Sprintf("Chapter %d", ref.Chapter)
			}
			if resolved || seen[label] {
				continue
			}
			seen[label] = true
			issues = append(issues, report.Issue{
				Code:     report.IssueUnresolvedReference,
				Severity: report.SeverityWarning,
				Stage:    stageName,
				Path:     doc.Path,
				Message:  fmt.Sprintf("reference to %s does not resolve", label),
			})
		}
	}
	return issues
}
