package render

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/document"
	ferrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/bookbuilder/internal/graph"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

type fakeRenderer struct {
	calls    atomic.Int32
	failures int // number of leading calls that fail
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, job Job, format Format) (string, error) {
	n := int(f.calls.Add(1))
	if n <= f.failures {
		return "", f.err
	}
	artifact := job.ArtifactPath(format)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(artifact, []byte("<html><head><title>t</title></head><body>ok</body></html>"), 0o644); err != nil {
		return "", err
	}
	return artifact, nil
}

func retryableFailure() error {
	return ferrors.NewError(ferrors.CategoryRender, "tool exploded").Retryable().Build()
}

func testJob(t *testing.T) Job {
	t.Helper()
	return Job{
		Source:    []byte("# Book\n\nhello\n"),
		Title:     "Book",
		OutputDir: t.TempDir(),
	}
}

func TestDispatch_PartialFailure_OthersStillComplete(t *testing.T) {
	pdf := &fakeRenderer{failures: 2, err: retryableFailure()}
	d := NewDispatcher(map[Format]Renderer{
		FormatHTML: &fakeRenderer{},
		FormatPDF:  pdf,
		FormatEPUB: &fakeRenderer{},
	}, metrics.NoopRecorder{}, nil)

	outcomes, issues := d.Dispatch(context.Background(), testJob(t), []Format{FormatEPUB, FormatPDF, FormatHTML})

	require.Len(t, outcomes, 3)
	require.Equal(t, "html", outcomes[0].Format)
	require.Equal(t, "pdf", outcomes[1].Format)
	require.Equal(t, "epub", outcomes[2].Format)

	require.True(t, outcomes[0].Success)
	require.False(t, outcomes[1].Success)
	require.True(t, outcomes[2].Success)

	// Initial attempt plus exactly one retry.
	require.Equal(t, 2, outcomes[1].Attempts)
	require.Equal(t, int32(2), pdf.calls.Load())

	var failed []report.Issue
	for _, issue := range issues {
		if issue.Code == report.IssueRenderFailed {
			failed = append(failed, issue)
		}
	}
	require.Len(t, failed, 1)
	require.Equal(t, report.SeverityWarning, failed[0].Severity)
	require.Contains(t, failed[0].Message, "pdf")
}

func TestDispatch_RetrySucceedsOnSecondAttempt(t *testing.T) {
	pdf := &fakeRenderer{failures: 1, err: retryableFailure()}
	d := NewDispatcher(map[Format]Renderer{FormatPDF: pdf}, nil, nil)

	outcomes, issues := d.Dispatch(context.Background(), testJob(t), []Format{FormatPDF})

	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Success)
	require.Equal(t, 2, outcomes[0].Attempts)
	require.Empty(t, issues)
}

func TestDispatch_EnvironmentErrorNotRetried(t *testing.T) {
	pdf := &fakeRenderer{
		failures: 2,
		err:      ferrors.NewError(ferrors.CategoryEnvironment, "tool missing").Build(),
	}
	d := NewDispatcher(map[Format]Renderer{FormatPDF: pdf}, nil, nil)

	outcomes, issues := d.Dispatch(context.Background(), testJob(t), []Format{FormatPDF})

	require.False(t, outcomes[0].Success)
	require.Equal(t, 1, outcomes[0].Attempts)
	require.Equal(t, int32(1), pdf.calls.Load())
	require.Len(t, issues, 1)
	require.Equal(t, report.IssueRenderEnvironment, issues[0].Code)
}

func TestDispatch_UnconfiguredFormat(t *testing.T) {
	d := NewDispatcher(map[Format]Renderer{}, nil, nil)

	outcomes, issues := d.Dispatch(context.Background(), testJob(t), []Format{FormatEPUB})

	require.Len(t, outcomes, 1)
	require.False(t, outcomes[0].Success)
	require.Len(t, issues, 1)
	require.Equal(t, report.IssueRenderEnvironment, issues[0].Code)
}

func TestGoldmarkRenderer_ProducesVerifiableArtifact(t *testing.T) {
	r := NewGoldmarkRenderer()
	job := Job{
		Source:    []byte("# My Book\n\nSome **bold** prose.\n"),
		Title:     "My Book",
		OutputDir: t.TempDir(),
	}

	artifact, err := r.Render(context.Background(), job, FormatHTML)
	require.NoError(t, err)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	require.Contains(t, string(data), "<title>My Book</title>")
	require.Contains(t, string(data), "<strong>bold</strong>")

	require.Empty(t, VerifyHTML(artifact))
}

func TestVerifyHTML_FlagsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><head><title></title></head><body></body></html>"), 0o644))

	issues := VerifyHTML(path)
	require.Len(t, issues, 2)
	for _, issue := range issues {
		require.Equal(t, report.IssueHTMLVerification, issue.Code)
		require.Equal(t, report.SeverityWarning, issue.Severity)
	}
}

func TestCommandRenderer_CopiesStagedInput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on cp")
	}
	r := &CommandRenderer{Argv: []string{"cp", PlaceholderInput, PlaceholderOutput}}
	job := testJob(t)

	artifact, err := r.Render(context.Background(), job, FormatPDF)
	require.NoError(t, err)
	require.Equal(t, job.ArtifactPath(FormatPDF), artifact)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	require.Equal(t, job.Source, data)
}

func TestCommandRenderer_MissingToolIsEnvironmentError(t *testing.T) {
	r := &CommandRenderer{Argv: []string{"definitely-not-a-real-tool-xyz", PlaceholderInput, PlaceholderOutput}}

	_, err := r.Render(context.Background(), testJob(t), FormatPDF)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryEnvironment))

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.False(t, ce.CanRetry())
}

func TestCommandRenderer_NonZeroExitIsRetryableRenderError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	r := &CommandRenderer{Argv: []string{"sh", "-c", "echo boom >&2; exit 3"}}

	_, err := r.Render(context.Background(), testJob(t), FormatEPUB)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.True(t, ce.CanRetry())
	require.Contains(t, ce.Error(), "boom")
}

func TestCommandRenderer_NoArtifactLeftOnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	r := &CommandRenderer{Argv: []string{"sh", "-c", "echo partial > \"$1\"; exit 1", "render", PlaceholderOutput}}
	job := testJob(t)

	_, err := r.Render(context.Background(), job, FormatEPUB)
	require.Error(t, err)

	_, statErr := os.Stat(job.ArtifactPath(FormatEPUB))
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(job.ArtifactPath(FormatEPUB) + ".tmp")
	require.True(t, os.IsNotExist(statErr))
}

func TestAssemble_ReadingOrder(t *testing.T) {
	docs := []*document.Document{
		{
			Path:     "content/appendices/appendix-a.md",
			Position: document.Position{Appendix: "A"},
			Meta:     frontmatter.Metadata{Title: "Glossary"},
			Body:     []byte("terms"),
		},
		{
			Path:     "content/chapters/part2/chapter-01.md",
			Position: document.Position{Part: 2, Chapter: 1},
			Meta:     frontmatter.Metadata{Title: "Advanced"},
			Body:     []byte("deep dive"),
		},
		{
			Path:     "content/chapters/part1/chapter-01.md",
			Position: document.Position{Part: 1, Chapter: 1},
			Meta:     frontmatter.Metadata{Title: "Basics"},
			Body:     []byte("hello world"),
		},
	}
	g, issues := graph.Build(docs)
	require.Empty(t, issues)

	src := string(Assemble(g, "The Book"))

	basics := strings.Index(src, "## Basics")
	advanced := strings.Index(src, "## Advanced")
	glossary := strings.Index(src, "## Appendix A: Glossary")
	require.True(t, basics >= 0 && advanced >= 0 && glossary >= 0)
	require.Less(t, basics, advanced)
	require.Less(t, advanced, glossary)
	require.True(t, strings.HasPrefix(src, "# The Book\n"))
}
