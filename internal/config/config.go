package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect run
	// behavior, keep the CLI flags in internal/cli/clone.go in sync.
	Assignment Assignment
	Targeting  Targeting
	Output     Output
	Runtime    Runtime
}

type Assignment struct {
	// Type is the assignment category and the leading segment of every
	// repository name, e.g. "lab" or "project" (positional CLI argument).
	Type string

	// Number is the assignment number (see --number). 0 means no number segment.
	Number int

	// Name is the optional assignment name (see --name). Spaces are normalized
	// to dashes to match GitHub repository naming.
	Name string

	// Deadline is the raw ISO 8601 date (YYYY-MM-DD) supplied via --deadline.
	// Empty means no deadline: each repository stays at its fetched head.
	Deadline string

	// DeadlineAt is the parsed deadline instant: local midnight at the start
	// of the Deadline date. Commits at or after this instant are not eligible.
	DeadlineAt *time.Time

	// Tests is an optional path to a TA test suite to record alongside the run
	// (see --tests). Accepted and recorded; distribution is out of scope.
	Tests string
}

type Targeting struct {
	// Roster is the path to the CSV roster of student,username pairs (see --roster).
	Roster string

	// Org is the GitHub organization that owns the student repositories
	// (see --org). Required: it anchors every clone URL. With a roster,
	// repository names are derived per student; without one, the org's
	// repositories matching the assignment prefix are discovered via API.
	Org string

	// TargetDir is the directory working copies are cloned into (see --target-dir).
	TargetDir string

	// Exclude filters discovered repositories by name using Go path.Match style
	// patterns (see --exclude). Only applies to org discovery, never to roster entries.
	Exclude []string

	// MaxRepos limits how many repositories to process (see --max-repos). 0 means unlimited.
	MaxRepos int

	// DryRun resolves the repository set and prints it without cloning (see --dry-run).
	DryRun bool
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// Out writes structured outcome records to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency controls how many repositories are processed in parallel
	// (see --concurrency). 1 keeps outcome ordering identical to roster order.
	Concurrency int

	// Timeout is the global timeout for the whole batch (see --timeout).
	Timeout time.Duration
}

func New() *Config {
	return &Config{
		Targeting: Targeting{
			TargetDir: ".",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 1,
			Timeout:     30 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	c.Targeting.Exclude = splitCommaList(c.Targeting.Exclude)

	// Assignment validation
	if strings.TrimSpace(c.Assignment.Type) == "" {
		return errors.New("assignment type is required")
	}
	c.Assignment.Type = strings.TrimSpace(c.Assignment.Type)
	if c.Assignment.Number < 0 {
		return errors.New("--number must be >= 0")
	}
	// Dashes are the GitHub naming convention; tolerate spaces in --name.
	c.Assignment.Name = strings.ReplaceAll(strings.TrimSpace(c.Assignment.Name), " ", "-")

	if c.Assignment.Deadline != "" {
		at, err := ParseDeadline(c.Assignment.Deadline)
		if err != nil {
			return err
		}
		c.Assignment.DeadlineAt = &at
	}

	// Targeting validation
	if c.Targeting.Org == "" {
		return errors.New("--org is required (set the flag or " + EnvOrg + ")")
	}
	if c.Targeting.TargetDir == "" {
		c.Targeting.TargetDir = "."
	}
	if c.Targeting.MaxRepos < 0 {
		return errors.New("--max-repos must be >= 0")
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

// RepoPrefix is the repository name prefix shared by every student's repo for
// this assignment: <type>[-<number>][-<name>]-. The student username completes it.
func (c *Config) RepoPrefix() string {
	parts := []string{c.Assignment.Type}
	if c.Assignment.Number > 0 {
		parts = append(parts, fmt.Sprintf("%d", c.Assignment.Number))
	}
	if c.Assignment.Name != "" {
		parts = append(parts, c.Assignment.Name)
	}
	return strings.Join(parts, "-") + "-"
}

// RepoName returns the full repository name for one student username.
func (c *Config) RepoName(username string) string {
	return c.RepoPrefix() + username
}

// ParseDeadline parses an ISO 8601 date (YYYY-MM-DD) as local midnight at the
// start of that day. The instant is an exclusive upper bound: a commit made at
// exactly midnight of the deadline day is not eligible.
func ParseDeadline(date string) (time.Time, error) {
	at, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --deadline value %q: expected ISO 8601 date (YYYY-MM-DD)", date)
	}
	return at, nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
