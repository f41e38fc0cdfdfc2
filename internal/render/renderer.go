package render

import (
	"context"
	"os"
	"path/filepath"
)

// Job carries the immutable inputs shared by every format renderer.
type Job struct {
	// Source is the assembled Markdown for the whole book.
	Source []byte

	// Title is the book title, used for document metadata.
	Title string

	// OutputDir is the root output directory. Each format writes only under
	// its own subdirectory.
	OutputDir string
}

// ArtifactPath returns the destination file for a format.
func (j Job) ArtifactPath(format Format) string {
	return filepath.Join(j.OutputDir, string(format), "book"+format.Extension())
}

// Renderer produces one output format from a render job.
//
// Implementations must be atomic: on failure or cancellation no partial
// artifact may remain at the artifact path. The convention is to write to a
// temporary file and rename only on success.
type Renderer interface {
	Render(ctx context.Context, job Job, format Format) (artifact string, err error)
}

// commitArtifact atomically moves a finished temporary file into place.
func commitArtifact(tmp, artifact string) error {
	return os.Rename(tmp, artifact)
}

// discardArtifact removes a temporary file, best effort.
func discardArtifact(tmp string) {
	_ = os.Remove(tmp)
}
