package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "projmedic/internal/github"
)

func newTestGitHubClient(t *testing.T, mux *http.ServeMux) *gh.Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := gh.NewClient(context.Background(), "dummy")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parse base URL: %v", err)
	}
	client.Client.BaseURL = base
	client.Client.UploadURL = base
	return client
}

func orgReposHandler(repos ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[")
		for i, name := range repos {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":%d,"name":%q,"owner":{"login":"cs-course"}}`, i+1, name)
		}
		fmt.Fprint(w, "]")
	}
}

func TestDiscoverPlan_KeepsOnlyAssignmentRepos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/cs-course/repos", orgReposHandler(
		"lab-1-asmith", "lab-1-bjones", "lab-2-asmith", "course-materials",
	))
	client := newTestGitHubClient(t, mux)
	cfg := assignmentConfig(t)

	plan, err := DiscoverPlan(context.Background(), client, cfg)
	if err != nil {
		t.Fatalf("DiscoverPlan returned error: %v", err)
	}
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d: %+v", len(plan.Tasks), plan.Tasks)
	}
	if plan.Tasks[0].Student != "asmith" || plan.Tasks[1].Student != "bjones" {
		t.Fatalf("students not recovered from repo names: %+v", plan.Tasks)
	}
	if plan.Tasks[0].OriginURL != "https://github.com/cs-course/lab-1-asmith.git" {
		t.Fatalf("OriginURL = %q", plan.Tasks[0].OriginURL)
	}
}

func TestDiscoverPlan_AppliesExcludePatterns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/cs-course/repos", orgReposHandler(
		"lab-1-asmith", "lab-1-solution", "lab-1-template",
	))
	client := newTestGitHubClient(t, mux)
	cfg := assignmentConfig(t)
	cfg.Targeting.Exclude = []string{"lab-1-sol*", "lab-1-template"}

	plan, err := DiscoverPlan(context.Background(), client, cfg)
	if err != nil {
		t.Fatalf("DiscoverPlan returned error: %v", err)
	}
	if len(plan.Tasks) != 1 || plan.Tasks[0].RepoName != "lab-1-asmith" {
		t.Fatalf("exclude patterns not applied: %+v", plan.Tasks)
	}
}

func TestDiscoverPlan_HonorsMaxRepos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/cs-course/repos", orgReposHandler(
		"lab-1-asmith", "lab-1-bjones", "lab-1-cdoe",
	))
	client := newTestGitHubClient(t, mux)
	cfg := assignmentConfig(t)
	cfg.Targeting.MaxRepos = 2

	plan, err := DiscoverPlan(context.Background(), client, cfg)
	if err != nil {
		t.Fatalf("DiscoverPlan returned error: %v", err)
	}
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(plan.Tasks))
	}
}

func TestDiscoverPlan_RequiresClient(t *testing.T) {
	cfg := assignmentConfig(t)
	if _, err := DiscoverPlan(context.Background(), nil, cfg); err == nil {
		t.Fatal("expected error without a GitHub client")
	}
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     bool
	}{
		{name: "lab-1-solution", patterns: []string{"lab-1-sol*"}, want: true},
		{name: "lab-1-asmith", patterns: []string{"lab-1-sol*"}, want: false},
		{name: "lab-1-asmith", patterns: []string{"lab-1-asmith"}, want: true},
		{name: "lab-1-asmith", patterns: nil, want: false},
		{name: "lab-1-asmith", patterns: []string{"["}, want: false},
	}
	for _, tc := range tests {
		if got := excluded(tc.name, tc.patterns); got != tc.want {
			t.Errorf("excluded(%q, %v) = %v, want %v", tc.name, tc.patterns, got, tc.want)
		}
	}
}
