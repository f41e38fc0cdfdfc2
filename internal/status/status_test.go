package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/document"
	"git.home.luguber.info/inful/bookbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/bookbuilder/internal/graph"
)

func doc(part, chapter int, status frontmatter.Status, stub bool) *document.Document {
	d := &document.Document{
		Path:     "content/chapters",
		Position: document.Position{Part: part, Chapter: chapter},
		Locale:   document.DefaultLocale,
		Stub:     stub,
	}
	d.Path = d.Position.Key() + ".md"
	d.Meta.Status = status
	return d
}

func appendixDoc(id string, status frontmatter.Status) *document.Document {
	d := &document.Document{
		Path:     "appendix-" + id + ".md",
		Position: document.Position{Appendix: id},
		Locale:   document.DefaultLocale,
	}
	d.Meta.Status = status
	return d
}

func TestAggregate_AllComplete_HundredPercent(t *testing.T) {
	g, _ := graph.Build([]*document.Document{
		doc(1, 1, frontmatter.StatusComplete, false),
		doc(1, 2, frontmatter.StatusComplete, false),
	})

	completion := Aggregate(g)
	require.Equal(t, 100.0, completion.OverallPercent)
	require.Len(t, completion.Parts, 1)
	require.Equal(t, 100.0, completion.Parts[0].Percent)
}

func TestAggregate_WeightedMix(t *testing.T) {
	g, _ := graph.Build([]*document.Document{
		doc(1, 1, frontmatter.StatusComplete, false), // 1.0
		doc(1, 2, frontmatter.StatusRevised, false),  // 0.66
		doc(1, 3, frontmatter.StatusDraft, false),    // 0.33
		doc(1, 4, frontmatter.StatusPlanned, false),  // 0
	})

	completion := Aggregate(g)
	require.InDelta(t, (1.0+0.66+0.33)/4*100, completion.OverallPercent, 1e-9)
}

func TestAggregate_AbsentChapterNotInDenominator(t *testing.T) {
	// Chapters 1, 2, 4 exist; chapter 3 does not. The denominator is 3.
	g, _ := graph.Build([]*document.Document{
		doc(1, 1, frontmatter.StatusComplete, false),
		doc(1, 2, frontmatter.StatusComplete, false),
		doc(1, 4, frontmatter.StatusComplete, false),
	})

	completion := Aggregate(g)
	require.Equal(t, 100.0, completion.OverallPercent)
	require.Equal(t, 3, completion.Chapters)
}

func TestAggregate_StubCountsAsPlanned(t *testing.T) {
	// The stub claims complete but has no body; it weighs zero.
	g, _ := graph.Build([]*document.Document{
		doc(1, 1, frontmatter.StatusComplete, false),
		doc(1, 2, frontmatter.StatusComplete, true),
	})

	completion := Aggregate(g)
	require.Equal(t, 50.0, completion.OverallPercent)
}

func TestAggregate_AppendicesInOverallNotInParts(t *testing.T) {
	g, _ := graph.Build([]*document.Document{
		doc(1, 1, frontmatter.StatusComplete, false),
		appendixDoc("A", frontmatter.StatusPlanned),
	})

	completion := Aggregate(g)
	require.Equal(t, 50.0, completion.OverallPercent)
	require.Len(t, completion.Parts, 1)
	require.Equal(t, 100.0, completion.Parts[0].Percent)
	require.Equal(t, 1, completion.Appendices)
}

func TestAggregate_Idempotent_BitIdenticalAcrossRuns(t *testing.T) {
	docs := []*document.Document{
		doc(1, 1, frontmatter.StatusDraft, false),
		doc(1, 2, frontmatter.StatusRevised, false),
		doc(2, 1, frontmatter.StatusComplete, false),
		appendixDoc("A", frontmatter.StatusDraft),
	}

	g1, _ := graph.Build(docs)
	g2, _ := graph.Build(docs)

	first := Aggregate(g1)
	second := Aggregate(g2)
	require.Equal(t, first, second)
}

func TestAggregate_EmptyGraph_ZeroPercent(t *testing.T) {
	g, _ := graph.Build(nil)
	completion := Aggregate(g)
	require.Equal(t, 0.0, completion.OverallPercent)
}
