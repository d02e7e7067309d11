package engine

import (
	"fmt"
	"path/filepath"

	"projmedic/internal/config"
	"projmedic/internal/roster"
)

// Task is one repository's unit of work: who it belongs to, where it lives
// remotely, and where its private working copy goes locally.
type Task struct {
	Student   string
	RepoName  string
	OriginURL string
	Dir       string
}

// Plan is the ordered set of repositories to process. Order matches the
// roster (or discovery listing), so sequential runs emit outcomes in roster
// order.
type Plan struct {
	Tasks []Task
}

// CloneURL builds the HTTPS clone URL for one repository of the organization.
func CloneURL(org, repoName string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", org, repoName)
}

// BuildRosterPlan derives one task per roster entry. The repository name is
// fully determined by the assignment parts and the student's username.
func BuildRosterPlan(cfg *config.Config, entries []roster.Entry) *Plan {
	plan := &Plan{Tasks: make([]Task, 0, len(entries))}
	for _, e := range entries {
		repoName := cfg.RepoName(e.Username)
		plan.Tasks = append(plan.Tasks, Task{
			Student:   e.Student,
			RepoName:  repoName,
			OriginURL: CloneURL(cfg.Targeting.Org, repoName),
			Dir:       filepath.Join(cfg.Targeting.TargetDir, repoName),
		})
	}
	if cfg.Targeting.MaxRepos > 0 && len(plan.Tasks) > cfg.Targeting.MaxRepos {
		plan.Tasks = plan.Tasks[:cfg.Targeting.MaxRepos]
	}
	return plan
}
