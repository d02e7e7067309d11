package engine

import (
	"context"
	"fmt"
	"os"

	"projmedic/internal/config"
	gh "projmedic/internal/github"
	"projmedic/internal/outcome"
	"projmedic/internal/output"
	"projmedic/internal/roster"
)

func exitCodeForRun(fatal, failures, repairs bool) int {
	// Exit code contract:
	// 0 = clean run, every repository already well-formed
	// 1 = at least one repository needed repairs or has recorded conflicts
	// 2 = at least one repository failed a pipeline stage
	// 3 = fatal error (the batch did not run)
	if fatal {
		return 3
	}
	if failures {
		return 2
	}
	if repairs {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

type Engine struct {
	Client *gh.Client
	Token  string

	// runPipeline is a test seam for streaming execution.
	// If nil, Engine uses the real pipeline + scheduler.
	runPipeline func(ctx context.Context, cfg *config.Config, plan *Plan) (<-chan outcome.Record, <-chan error)
}

func NewEngine(client *gh.Client, token string) *Engine {
	return &Engine{
		Client: client,
		Token:  token,
	}
}

// buildPlan resolves the repository set: roster-driven when a roster is
// configured, org discovery otherwise.
func (e *Engine) buildPlan(ctx context.Context, cfg *config.Config) (*Plan, error) {
	if cfg.Targeting.Roster != "" {
		entries, err := roster.Load(cfg.Targeting.Roster)
		if err != nil {
			return nil, err
		}
		return BuildRosterPlan(cfg, entries), nil
	}
	return DiscoverPlan(ctx, e.Client, cfg)
}

func (e *Engine) executePlanStream(ctx context.Context, cfg *config.Config, plan *Plan, outMgr *output.Manager) (<-chan outcome.Record, <-chan error) {
	if e.runPipeline != nil {
		return e.runPipeline(ctx, cfg, plan)
	}

	p := NewPipeline(e.Token, cfg.Assignment.DeadlineAt)
	// repo.started marks the moment work on a repository begins, not the
	// moment its outcome is consumed.
	p.onStart = func(task Task) {
		_ = outMgr.Write(output.Event{Type: "repo.started", Repo: task.RepoName})
	}
	scheduler, err := NewScheduler(p, cfg.Runtime.Concurrency)
	if err != nil {
		resCh := make(chan outcome.Record)
		errCh := make(chan error, 1)
		close(resCh)
		errCh <- err
		close(errCh)
		return resCh, errCh
	}
	return scheduler.Execute(ctx, plan)
}

func maybeDryRun(cfg *config.Config, plan *Plan) (int, bool) {
	if !cfg.Targeting.DryRun {
		return 0, false
	}

	fmt.Println("Resolved repositories:")
	for _, t := range plan.Tasks {
		fmt.Printf("%s (%s)\n", t.RepoName, t.Student)
	}
	return 0, true
}

func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	if !cfg.Output.NoConsole {
		fmt.Fprintln(os.Stderr, "Resolving repositories...")
	}
	plan, err := e.buildPlan(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving repositories: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Found %d repositories.\n", len(plan.Tasks))
	}

	if code, ok := maybeDryRun(cfg, plan); ok {
		return code
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer outMgr.Close()

	_ = outMgr.Write(output.Event{Type: "run.started", Repos: len(plan.Tasks)})

	resCh, errCh := e.executePlanStream(ctx, cfg, plan, outMgr)

	hasFailures := false
	hasRepairs := false
	for rec := range resCh {
		_ = outMgr.Write(rec)
		if rec.Status == outcome.StatusFailed {
			hasFailures = true
		}
		if len(rec.StagesRepaired) > 0 || len(rec.Conflicts) > 0 {
			hasRepairs = true
		}
	}

	var schedErr error
	// Drain scheduler errors; only whether a fatal error occurred matters.
	for err := range errCh {
		if err != nil {
			schedErr = err
		}
	}

	code := exitCodeForRun(schedErr != nil, hasFailures, hasRepairs)
	_ = outMgr.Write(output.Event{Type: "run.finished", ExitCode: code})
	return code
}
