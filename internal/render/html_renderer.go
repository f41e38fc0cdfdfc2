package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	ferrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// GoldmarkRenderer renders HTML in-process, so the HTML format works on any
// machine without an external toolchain.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer returns an HTML renderer with GFM tables and
// strikethrough enabled.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

func (r *GoldmarkRenderer) Render(ctx context.Context, job Job, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := r.md.Convert(job.Source, &body); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "convert markdown to html").
			Retryable().Build()
	}

	artifact := job.ArtifactPath(format)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment, "create html output directory").Build()
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(job.Title))
	page.Write(body.Bytes())
	page.WriteString("\n</body>\n</html>\n")

	tmp := artifact + ".tmp"
	if err := os.WriteFile(tmp, page.Bytes(), 0o644); err != nil {
		discardArtifact(tmp)
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment, "write html artifact").Build()
	}
	if err := commitArtifact(tmp, artifact); err != nil {
		discardArtifact(tmp)
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment, "commit html artifact").Build()
	}
	return artifact, nil
}
