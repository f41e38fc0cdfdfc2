// Package translation pairs canonical documents with their translated
// counterparts and flags missing, stale, duplicated, and orphaned
// translations.
//
// Staleness is a heuristic: a translation whose last-updated date precedes
// its canonical source's is flagged, without diffing actual content. A
// translation may carry a sourceFingerprint recording the canonical content
// it was translated from; when that fingerprint still matches, the
// translation is fresh regardless of dates, since the source provably has
// not changed.
package translation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"git.home.luguber.info/inful/bookbuilder/internal/document"
	"git.home.luguber.info/inful/bookbuilder/internal/graph"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

const stageName = "link_translations"

// Link relates one canonical document to one translated counterpart.
type Link struct {
	Canonical  *document.Document
	Translated *document.Document
	Locale     string
	Stale      bool
}

// Result is the full outcome of the linking pass, recomputed each run.
type Result struct {
	Links   []Link
	Summary report.TranslationSummary
	Issues  []report.Issue
}

// LinkTranslations pairs every translated document with its canonical source
// by structural position.
func LinkTranslations(g *graph.ContentGraph, translations []*document.Document) *Result {
	result := &Result{}

	// Deterministic processing order.
	sorted := make([]*document.Document, len(translations))
	copy(sorted, translations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	locales := make(map[string]bool)
	// locale -> position key -> first claimant, for duplicate detection.
	claimed := make(map[string]map[string]*document.Document)

	for _, tr := range sorted {
		locales[tr.Locale] = true

		if _, err := parseLocale(tr.Locale); err != nil {
			result.Issues = append(result.Issues, report.Issue{
				Code:     report.IssueInvalidLocale,
				Severity: report.SeverityWarning,
				Stage:    stageName,
				Path:     tr.Path,
				Message:  fmt.Sprintf("locale %q is not a valid language tag: %v", tr.Locale, err),
			})
		}

		byPos, ok := claimed[tr.Locale]
		if !ok {
			byPos = make(map[string]*document.Document)
			claimed[tr.Locale] = byPos
		}
		if first, dup := byPos[tr.Position.Key()]; dup {
			result.Issues = append(result.Issues, report.Issue{
				Code:     report.IssueDuplicateTranslation,
				Severity: report.SeverityError,
				Stage:    stageName,
				Path:     tr.Path,
				Message: fmt.Sprintf("both %s and %s claim %s for locale %s",
					first.Path, tr.Path, tr.Position, tr.Locale),
			})
			continue
		}
		byPos[tr.Position.Key()] = tr

		canonical, ok := g.Lookup(tr.Position)
		if !ok {
			// Never silently dropped: an orphan usually means the canonical
			// file moved or was renumbered.
			result.Summary.Orphaned++
			result.Issues = append(result.Issues, report.Issue{
				Code:     report.IssueOrphanTranslation,
				Severity: report.SeverityWarning,
				Stage:    stageName,
				Path:     tr.Path,
				Message:  fmt.Sprintf("no canonical document exists at %s", tr.Position),
			})
			continue
		}

		link := Link{
			Canonical:  canonical,
			Translated: tr,
			Locale:     tr.Locale,
			Stale:      isStale(canonical, tr),
		}
		result.Links = append(result.Links, link)
		result.Summary.Linked++
		if link.Stale {
			result.Summary.Stale++
			result.Issues = append(result.Issues, report.Issue{
				Code:     report.IssueStaleTranslation,
				Severity: report.SeverityWarning,
				Stage:    stageName,
				Path:     tr.Path,
				Message: fmt.Sprintf("translation updated %s but canonical %s updated %s",
					tr.LastUpdated.Format("2006-01-02"), canonical.Path,
					canonical.LastUpdated.Format("2006-01-02")),
			})
		}
	}

	result.Summary.Locales = sortedLocales(locales)
	result.Issues = append(result.Issues, missingIssues(g, claimed, result.Summary.Locales, &result.Summary)...)
	return result
}

// isStale decides freshness for one link. Fingerprint evidence beats the
// date heuristic; absent both signals the translation is assumed fresh.
func isStale(canonical, translated *document.Document) bool {
	if translated.Meta.SourceFingerprint != "" {
		return translated.Meta.SourceFingerprint != canonical.Fingerprint
	}
	if canonical.LastUpdated.IsZero() || translated.LastUpdated.IsZero() {
		return false
	}
	return translated.LastUpdated.Before(canonical.LastUpdated)
}

// missingIssues reports canonical documents without a counterpart in each
// known locale. These are informational; a partially translated book is the
// normal state of affairs.
func missingIssues(g *graph.ContentGraph, claimed map[string]map[string]*document.Document, locales []string, summary *report.TranslationSummary) []report.Issue {
	var issues []report.Issue
	for _, locale := range locales {
		byPos := claimed[locale]
		for _, doc := range g.Documents() {
			if _, ok := byPos[doc.Position.Key()]; ok {
				continue
			}
			summary.Missing++
			issues = append(issues, report.Issue{
				Code:     report.IssueMissingTranslation,
				Severity: report.SeverityInfo,
				Stage:    stageName,
				Path:     doc.Path,
				Message:  fmt.Sprintf("no %s translation for %s", localeLabel(locale), doc.Position),
			})
		}
	}
	return issues
}

// parseLocale validates a locale tag, tolerating the underscore convention
// used in the translations/ directory layout (pt_BR).
func parseLocale(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(locale, "_", "-"))
}

// localeLabel renders a locale with its English display name when the tag
// parses ("pt_BR (Brazilian Portuguese)").
func localeLabel(locale string) string {
	tag, err := parseLocale(locale)
	if err != nil {
		return locale
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return locale
	}
	return fmt.Sprintf("%s (%s)", locale, name)
}

func sortedLocales(set map[string]bool) []string {
	locales := make([]string, 0, len(set))
	for locale := range set {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}
