package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// LastUpdatedSource supplies a revision date for files whose frontmatter
// omits one. The git-backed implementation lives in internal/gitmeta.
type LastUpdatedSource interface {
	LastUpdated(relPath string) (time.Time, bool)
}

// Loader walks the book layout and parses every content file.
type Loader struct {
	// Root is the book root directory containing content/ and translations/.
	Root string

	// History optionally supplies last-updated dates from version control
	// when frontmatter omits the date field.
	History LastUpdatedSource

	// LocaleFilter restricts loaded translations to one locale when set.
	// The canonical set is always loaded; structure comes from it.
	LocaleFilter string
}

// LoadResult is the outcome of one full walk: parsed documents plus the
// per-file findings for everything that could not be parsed. A bad file
// becomes an issue, never a silent skip.
type LoadResult struct {
	Canonical    []*Document
	Translations []*Document
	Issues       []report.Issue
}

// Total returns the number of successfully parsed documents.
func (r *LoadResult) Total() int {
	return len(r.Canonical) + len(r.Translations)
}

// Load parses all content files under Root. The walk itself failing (e.g.
// unreadable content directory) is an error; individual bad files are
// collected as issues instead.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	result := &LoadResult{}

	for _, dir := range []string{"content", "translations"} {
		base := filepath.Join(l.Root, dir)
		if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
			// A book without translations is fine; a book without content
			// is caught by the zero-document check below.
			continue
		}

		err := filepath.WalkDir(base, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if entry.IsDir() || !IsContentFile(p) {
				return nil
			}

			rel, err := filepath.Rel(l.Root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			doc, issues := l.parseFile(p, rel)
			result.Issues = append(result.Issues, issues...)
			if doc == nil {
				return nil
			}
			if l.LocaleFilter != "" && !doc.IsCanonical() && doc.Locale != l.LocaleFilter {
				return nil
			}
			if doc.IsCanonical() {
				result.Canonical = append(result.Canonical, doc)
			} else {
				result.Translations = append(result.Translations, doc)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", base, err)
		}
	}

	// Deterministic order regardless of filesystem iteration quirks.
	sortDocs(result.Canonical)
	sortDocs(result.Translations)

	slog.Debug("Document load completed",
		slog.Int("canonical", len(result.Canonical)),
		slog.Int("translations", len(result.Translations)),
		slog.Int("issues", len(result.Issues)))

	return result, nil
}

func (l *Loader) parseFile(absPath, relPath string) (*Document, []report.Issue) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, []report.Issue{{
			Code:     report.IssueMalformedFrontmatter,
			Severity: report.SeverityError,
			Stage:    "parse_documents",
			Path:     relPath,
			Message:  fmt.Sprintf("read file: %v", err),
		}}
	}

	raw, body, had, err := frontmatter.Split(content)
	if err != nil || !had {
		msg := "metadata block is absent"
		if err != nil {
			msg = err.Error()
		}
		return nil, []report.Issue{{
			Code:     report.IssueMalformedFrontmatter,
			Severity: report.SeverityError,
			Stage:    "parse_documents",
			Path:     relPath,
			Message:  msg,
		}}
	}

	fields, err := frontmatter.ParseYAML(raw)
	if err != nil {
		return nil, []report.Issue{{
			Code:     report.IssueMalformedFrontmatter,
			Severity: report.SeverityError,
			Stage:    "parse_documents",
			Path:     relPath,
			Message:  err.Error(),
		}}
	}

	meta, warnings, err := frontmatter.Decode(fields)
	if err != nil {
		code := report.IssueMalformedFrontmatter
		if errors.Is(err, frontmatter.ErrMissingRequiredField) {
			code = report.IssueMissingRequiredField
		}
		return nil, []report.Issue{{
			Code:     code,
			Severity: report.SeverityError,
			Stage:    "parse_documents",
			Path:     relPath,
			Message:  err.Error(),
		}}
	}

	var issues []report.Issue
	for _, w := range warnings {
		issues = append(issues, report.Issue{
			Code:     report.IssueUnknownStatus,
			Severity: report.SeverityWarning,
			Stage:    "parse_documents",
			Path:     relPath,
			Message:  w.String(),
		})
	}

	doc := &Document{
		Path:        relPath,
		Meta:        meta,
		Body:        body,
		Fingerprint: frontmatter.Fingerprint(raw, body),
		Stub:        len(bytes.TrimSpace(body)) == 0,
	}

	inferred := InferFromPath(relPath)

	doc.Locale = meta.Locale
	if doc.Locale == "" {
		doc.Locale = inferred.Locale
	}

	pos, posErr := resolvePosition(meta, inferred)
	if posErr != nil {
		issues = append(issues, report.Issue{
			Code:     report.IssueInvalidPosition,
			Severity: report.SeverityError,
			Stage:    "parse_documents",
			Path:     relPath,
			Message:  posErr.Error(),
		})
		return nil, issues
	}
	doc.Position = pos

	doc.LastUpdated = meta.LastUpdated
	if doc.LastUpdated.IsZero() && l.History != nil {
		if t, ok := l.History.LastUpdated(relPath); ok {
			doc.LastUpdated = t
			slog.Debug("Using git history for last-updated date",
				logfields.Path(relPath), slog.Time("last_updated", t))
		}
	}

	return doc, issues
}

// resolvePosition combines explicit frontmatter values with path inference.
// Explicit values win field by field; the result must address exactly one of
// {part+chapter, appendix}.
func resolvePosition(meta frontmatter.Metadata, inferred PathInfo) (Position, error) {
	part := meta.Part
	if part == nil {
		part = inferred.Part
	}
	chapter := meta.Chapter
	if chapter == nil {
		chapter = inferred.Chapter
	}
	appendix := meta.Appendix
	if appendix == "" {
		appendix = inferred.Appendix
	}

	hasChapter := part != nil || chapter != nil
	switch {
	case appendix != "" && hasChapter:
		return Position{}, fmt.Errorf("document claims both appendix %s and part/chapter identity", appendix)
	case appendix != "":
		return Position{Appendix: appendix}, nil
	case part != nil && chapter != nil:
		if *part < 1 || *chapter < 1 {
			return Position{}, fmt.Errorf("part and chapter must be >= 1, got (%d, %d)", *part, *chapter)
		}
		return Position{Part: *part, Chapter: *chapter}, nil
	case part != nil || chapter != nil:
		return Position{}, errors.New("part and chapter are mutually required, only one is set")
	default:
		return Position{}, errors.New("document has neither part/chapter nor appendix identity")
	}
}

func sortDocs(docs []*Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
}
