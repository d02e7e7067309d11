package gitops

import (
	"errors"
	"fmt"
	"io"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoEligibleRevision is returned when every commit on the current branch is
// at or after the deadline instant, e.g. a repository created after the
// deadline. The repository is recorded failed; the batch continues.
var ErrNoEligibleRevision = errors.New("no eligible revision before deadline")

// ResolveRevision pins the working copy to the snapshot the deadline demands.
//
// With a nil deadline the fetched head is already the right state: the head
// commit is returned and nothing is checked out. Otherwise the current
// branch's history is traversed from head in reverse-chronological order, and
// the first commit whose timestamp is strictly earlier than the deadline
// instant wins. Traversal order is authoritative when commits share a
// timestamp. The winning commit is checked out (detached, forced) so every
// later pipeline stage sees a consistent, reproducible tree.
func (w *Workspace) ResolveRevision(deadline *time.Time) (CommitRecord, error) {
	if deadline == nil {
		return w.Head()
	}

	// Committer-time order, not the default DFS: on merge histories the DFS
	// walks the first-parent chain to its root before visiting side branches,
	// so the first eligible commit it finds need not be the latest one.
	iter, err := w.repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		return CommitRecord{}, fmt.Errorf("%w: history of %s: %v", ErrUnreadableRepository, w.Dir, err)
	}
	defer iter.Close()

	for {
		commit, err := iter.Next()
		if errors.Is(err, io.EOF) {
			// History exhausted without an eligible commit.
			return CommitRecord{}, fmt.Errorf("%w (deadline %s)", ErrNoEligibleRevision, deadline.Format("2006-01-02"))
		}
		if err != nil {
			return CommitRecord{}, fmt.Errorf("%w: history of %s: %v", ErrUnreadableRepository, w.Dir, err)
		}
		if !commit.Committer.When.Before(*deadline) {
			continue
		}

		rec := CommitRecord{Hash: commit.Hash.String(), When: commit.Committer.When}
		if err := w.checkout(commit.Hash); err != nil {
			return CommitRecord{}, err
		}
		return rec, nil
	}
}

func (w *Workspace) checkout(hash plumbing.Hash) error {
	wt, err := w.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree of %s: %v", ErrUnreadableRepository, w.Dir, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("%w: checkout %s in %s: %v", ErrUnreadableRepository, hash, w.Dir, err)
	}
	return nil
}
