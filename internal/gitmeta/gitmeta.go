// Package gitmeta supplies document revision dates from git history.
//
// Frontmatter dates are authoritative; this is the fallback for files whose
// authors never filled in a date field. The book root may sit anywhere inside
// a working tree, so paths are rebased onto the repository root before
// querying the log.
package gitmeta

import (
	"fmt"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
)

// History answers last-updated queries against the enclosing git repository.
type History struct {
	repo *git.Repository
	// bookRel is the book root relative to the worktree root ("." when equal).
	bookRel string
}

// Open locates the git repository enclosing bookRoot. Returns an error when
// bookRoot is not inside a working tree; callers treat that as "no fallback
// available", not as a build failure.
func Open(bookRoot string) (*History, error) {
	abs, err := filepath.Abs(bookRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve book root: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open enclosing repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolve worktree: %w", err)
	}

	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, fmt.Errorf("rebase book root onto worktree: %w", err)
	}

	return &History{repo: repo, bookRel: filepath.ToSlash(rel)}, nil
}

// LastUpdated returns the committer time of the most recent commit touching
// the given book-relative file, or false when the file has no history yet
// (e.g. uncommitted new chapters).
func (h *History) LastUpdated(relPath string) (time.Time, bool) {
	p := relPath
	if h.bookRel != "." && h.bookRel != "" {
		p = h.bookRel + "/" + relPath
	}

	iter, err := h.repo.Log(&git.LogOptions{
		FileName: &p,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return time.Time{}, false
	}
	return commit.Committer.When, true
}
