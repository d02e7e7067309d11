package gitops

import (
	"context"
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// ErrUnreadableRepository wraps failures to materialize or open a working copy.
var ErrUnreadableRepository = errors.New("unreadable repository")

// CommitRecord identifies one historical snapshot of a repository.
type CommitRecord struct {
	Hash string
	When time.Time
}

// Workspace is one repository's private working copy. It is scoped to a
// single pipeline run and is never shared across repositories.
type Workspace struct {
	Origin string
	Dir    string

	repo *git.Repository
}

// Clone materializes a working copy of originURL into dir. An empty token
// clones anonymously; otherwise the token authenticates over HTTPS (the
// username is ignored by GitHub but must be non-empty).
func Clone(ctx context.Context, originURL, dir, token string) (*Workspace, error) {
	opts := &git.CloneOptions{URL: originURL}
	if token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "token", Password: token}
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: clone %s: %v", ErrUnreadableRepository, originURL, err)
	}
	return &Workspace{Origin: originURL, Dir: dir, repo: repo}, nil
}

// Open wraps an already-materialized working copy.
func Open(dir string) (*Workspace, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnreadableRepository, dir, err)
	}
	return &Workspace{Dir: dir, repo: repo}, nil
}

// Head returns the currently checked-out commit.
func (w *Workspace) Head() (CommitRecord, error) {
	ref, err := w.repo.Head()
	if err != nil {
		return CommitRecord{}, fmt.Errorf("%w: head of %s: %v", ErrUnreadableRepository, w.Dir, err)
	}
	commit, err := w.repo.CommitObject(ref.Hash())
	if err != nil {
		return CommitRecord{}, fmt.Errorf("%w: head commit of %s: %v", ErrUnreadableRepository, w.Dir, err)
	}
	return CommitRecord{Hash: commit.Hash.String(), When: commit.Committer.When}, nil
}
