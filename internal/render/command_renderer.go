package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Placeholders substituted into a render command's argument vector.
const (
	PlaceholderInput  = "{input}"
	PlaceholderOutput = "{output}"
	PlaceholderTitle  = "{title}"
)

// CommandRenderer invokes an external tool (pandoc, weasyprint, ...) via a
// process boundary. The command is an argument vector with {input},
// {output}, and {title} placeholders.
type CommandRenderer struct {
	Argv []string
}

// Render stages the assembled source to a temp file, runs the tool against a
// temporary output path, and commits the artifact only on success. A missing
// executable or unwritable output directory is an environment error (fatal
// for this format, not retryable); a non-zero exit is a render error worth
// one retry.
func (r *CommandRenderer) Render(ctx context.Context, job Job, format Format) (string, error) {
	if len(r.Argv) == 0 {
		return "", ferrors.NewError(ferrors.CategoryConfig,
			fmt.Sprintf("no render command configured for %s", format)).Build()
	}

	artifact := job.ArtifactPath(format)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment,
			fmt.Sprintf("create %s output directory", format)).Build()
	}

	bin, err := exec.LookPath(r.Argv[0])
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment,
			fmt.Sprintf("render tool %q not found on PATH", r.Argv[0])).Build()
	}

	staging, err := os.MkdirTemp("", "bookbuilder-render-*")
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment, "create staging directory").Build()
	}
	defer func() { _ = os.RemoveAll(staging) }()

	input := filepath.Join(staging, "book.md")
	if err := os.WriteFile(input, job.Source, 0o644); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment, "stage assembled source").Build()
	}

	tmp := artifact + ".tmp"
	defer discardArtifact(tmp)

	args := make([]string, 0, len(r.Argv)-1)
	for _, arg := range r.Argv[1:] {
		arg = strings.ReplaceAll(arg, PlaceholderInput, input)
		arg = strings.ReplaceAll(arg, PlaceholderOutput, tmp)
		arg = strings.ReplaceAll(arg, PlaceholderTitle, job.Title)
		args = append(args, arg)
	}

	// CommandContext kills an in-flight tool on cancellation; the deferred
	// discard then removes whatever partial output it left behind.
	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ferrors.WrapError(err, ferrors.CategoryRender,
			fmt.Sprintf("%s renderer failed: %s", format, tail(output))).
			Retryable().Build()
	}

	if _, err := os.Stat(tmp); errors.Is(err, os.ErrNotExist) {
		return "", ferrors.NewError(ferrors.CategoryRender,
			fmt.Sprintf("%s renderer exited zero but produced no output", format)).
			Retryable().Build()
	}

	if err := commitArtifact(tmp, artifact); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryEnvironment,
			fmt.Sprintf("commit %s artifact", format)).Build()
	}
	return artifact, nil
}

// tail keeps error messages readable when a tool dumps pages of output.
func tail(output []byte) string {
	s := strings.TrimSpace(string(output))
	const max = 300
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
