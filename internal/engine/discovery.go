package engine

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"projmedic/internal/config"
	gh "projmedic/internal/github"

	"github.com/google/go-github/v81/github"
)

const discoveryPageSize = 100

// DiscoverPlan lists the organization's repositories via the GitHub API and
// keeps the ones whose name starts with the assignment prefix. Used when no
// roster is supplied; the student is recovered from the repository name by
// stripping the prefix.
func DiscoverPlan(ctx context.Context, client *gh.Client, cfg *config.Config) (*Plan, error) {
	if client == nil {
		return nil, fmt.Errorf("discovery requires a GitHub client")
	}

	prefix := cfg.RepoPrefix()
	plan := &Plan{}

	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: discoveryPageSize},
	}
	for {
		repos, resp, err := client.Client.Repositories.ListByOrg(ctx, cfg.Targeting.Org, opts)
		if err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w", cfg.Targeting.Org, err)
		}
		for _, repo := range repos {
			name := repo.GetName()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if excluded(name, cfg.Targeting.Exclude) {
				continue
			}
			plan.Tasks = append(plan.Tasks, Task{
				Student:   strings.TrimPrefix(name, prefix),
				RepoName:  name,
				OriginURL: CloneURL(cfg.Targeting.Org, name),
				Dir:       filepath.Join(cfg.Targeting.TargetDir, name),
			})
			if cfg.Targeting.MaxRepos > 0 && len(plan.Tasks) >= cfg.Targeting.MaxRepos {
				return plan, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return plan, nil
}

// excluded reports whether name matches any of the path.Match style patterns.
// A malformed pattern never matches.
func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
