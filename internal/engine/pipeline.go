package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"projmedic/internal/eclipse"
	"projmedic/internal/gitops"
	"projmedic/internal/outcome"
	"projmedic/internal/srctree"
)

// Pipeline runs the fixed stage sequence against one repository. Every stage
// operates on the working copy left behind by the previous one; the first
// failing stage terminates the repository with a failed record and the batch
// moves on.
type Pipeline struct {
	Token    string
	Deadline *time.Time

	// onStart, when set, is invoked as the first act of Run, before any
	// stage touches the repository. The engine hooks lifecycle events here.
	onStart func(task Task)

	// acquire is a test seam for materializing the working copy.
	// If nil, the repository is cloned (or reopened when the target
	// directory already holds a working copy from an earlier run).
	acquire func(ctx context.Context, task Task) (*gitops.Workspace, error)
}

func NewPipeline(token string, deadline *time.Time) *Pipeline {
	return &Pipeline{Token: token, Deadline: deadline}
}

// Run executes all stages for one task and returns the outcome record.
// It never returns an error: every failure is captured on the record so one
// broken repository cannot take down the batch.
func (p *Pipeline) Run(ctx context.Context, task Task) outcome.Record {
	if p.onStart != nil {
		p.onStart(task)
	}
	rec := outcome.Done(task.Student, task.RepoName)

	ws, err := p.acquireWorkspace(ctx, task)
	if err != nil {
		rec.Fail(outcome.StageAcquire, err.Error())
		return rec
	}

	commit, err := ws.ResolveRevision(p.Deadline)
	if err != nil {
		rec.Fail(outcome.StageResolveRevision, err.Error())
		return rec
	}
	rec.ResolvedCommit = commit.Hash

	// The Eclipse project may be nested below the repository root; the
	// .project location (existing or to-be-created) anchors everything after.
	projPath, err := eclipse.FindDescriptor(ws.Dir, eclipse.ProjectFileName)
	if err != nil {
		rec.Fail(outcome.StageProjectDescriptor, fmt.Sprintf("locate descriptor: %v", err))
		return rec
	}
	projectRoot := ws.Dir
	if projPath != "" {
		projectRoot = filepath.Dir(projPath)
	} else {
		projPath = filepath.Join(ws.Dir, eclipse.ProjectFileName)
	}

	projRes, err := eclipse.EnsureProject(projPath)
	if err != nil {
		rec.Fail(outcome.StageProjectDescriptor, err.Error())
		return rec
	}
	if projRes.State == eclipse.StateRepaired {
		rec.Repaired(outcome.StageProjectDescriptor)
	}

	cpPath, err := eclipse.FindDescriptor(projectRoot, eclipse.ClasspathFileName)
	if err != nil {
		rec.Fail(outcome.StageClasspathDescriptor, fmt.Sprintf("locate descriptor: %v", err))
		return rec
	}
	if cpPath == "" {
		cpPath = filepath.Join(projectRoot, eclipse.ClasspathFileName)
	}
	cpRes, err := eclipse.EnsureClasspath(cpPath)
	if err != nil {
		rec.Fail(outcome.StageClasspathDescriptor, err.Error())
		return rec
	}
	if cpRes.State == eclipse.StateRepaired {
		rec.Repaired(outcome.StageClasspathDescriptor)
	}

	actions, err := srctree.Normalize(projectRoot)
	if err != nil {
		rec.Fail(outcome.StageNormalizeTree, err.Error())
		return rec
	}
	moved := false
	for _, a := range actions {
		switch a.Kind {
		case srctree.ActionMoved:
			moved = true
		case srctree.ActionConflict:
			rec.Conflicts = append(rec.Conflicts, outcome.Conflict{Path: a.Source, Reason: a.Reason})
		case srctree.ActionAmbiguousRoot:
			rec.Conflicts = append(rec.Conflicts, outcome.Conflict{Path: a.Dest, Reason: a.Reason})
		}
	}
	if moved {
		rec.Repaired(outcome.StageNormalizeTree)
	}

	// A correctly named project is left untouched, so the rename stage never
	// counts as a repair: the name is derived metadata, not student structure.
	if _, err := eclipse.Rename(projPath, eclipse.DeriveProjectName(task.OriginURL)); err != nil {
		rec.Fail(outcome.StageRename, err.Error())
		return rec
	}

	return rec
}

func (p *Pipeline) acquireWorkspace(ctx context.Context, task Task) (*gitops.Workspace, error) {
	if p.acquire != nil {
		return p.acquire(ctx, task)
	}
	if _, err := os.Stat(filepath.Join(task.Dir, ".git")); err == nil {
		return gitops.Open(task.Dir)
	}
	return gitops.Clone(ctx, task.OriginURL, task.Dir, p.Token)
}
