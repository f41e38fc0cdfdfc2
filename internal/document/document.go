// Package document defines the content-file model and the loader that walks
// the book layout (content/ plus translations/) into parsed documents.
package document

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/frontmatter"
)

// DefaultLocale is the canonical authoring locale; canonical documents are
// the source of truth for structure and staleness comparisons.
const DefaultLocale = "en"

// Position is a document's structural slot in the book: either a chapter
// within a part, or an appendix. Exactly one of the two is set.
type Position struct {
	Part     int    `json:"part,omitempty"`
	Chapter  int    `json:"chapter,omitempty"`
	Appendix string `json:"appendix,omitempty"`
}

// IsAppendix reports whether this position addresses an appendix.
func (p Position) IsAppendix() bool {
	return p.Appendix != ""
}

// IsZero reports whether no structural slot is set.
func (p Position) IsZero() bool {
	return p.Appendix == "" && p.Part == 0 && p.Chapter == 0
}

// Key returns a stable map key for the position ("1.5" or "A").
func (p Position) Key() string {
	if p.IsAppendix() {
		return p.Appendix
	}
	return fmt.Sprintf("%d.%d", p.Part, p.Chapter)
}

func (p Position) String() string {
	if p.IsAppendix() {
		return "appendix " + p.Appendix
	}
	return fmt.Sprintf("part %d chapter %d", p.Part, p.Chapter)
}

// Document is one parsed content file.
type Document struct {
	// Path is slash-separated and relative to the book root
	// (e.g. "content/chapters/part1/chapter-03.md").
	Path string

	Meta     frontmatter.Metadata
	Body     []byte
	Locale   string
	Position Position

	// LastUpdated is the resolved revision date: explicit frontmatter date
	// first, git history fallback second, zero when neither is available.
	LastUpdated time.Time

	// Fingerprint is the content fingerprint of the raw file, used as a
	// drift signal for translations.
	Fingerprint string

	// Stub marks a frontmatter-only placeholder (empty body). Stubs count
	// as planned in completion metrics.
	Stub bool
}

// IsCanonical reports whether the document is in the canonical locale.
func (d *Document) IsCanonical() bool {
	return d.Locale == DefaultLocale
}

// Status returns the document's editorial status.
func (d *Document) Status() frontmatter.Status {
	return d.Meta.Status
}
