package output

import "projmedic/internal/outcome"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - repo.started
// - repo.outcome
// - run.finished
//
// JSON mode remains an aggregate of outcome.Record values.
type Event struct {
	Type string `json:"type"`
	Repo string `json:"repo,omitempty"`
	*outcome.Record
	Repos    int `json:"repos,omitempty"`
	ExitCode int `json:"exit_code,omitempty"`
}

func eventFromRecord(r outcome.Record) Event {
	return Event{Type: "repo.outcome", Repo: r.Repo, Record: &r}
}
