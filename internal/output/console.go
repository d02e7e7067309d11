package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"projmedic/internal/outcome"
)

var (
	doneTag    = color.New(color.FgGreen, color.Bold).SprintFunc()
	failedTag  = color.New(color.FgRed, color.Bold).SprintFunc()
	repairNote = color.New(color.FgYellow).SprintFunc()
	commitNote = color.New(color.FgCyan).SprintFunc()
)

type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	mu      sync.Mutex
	records []outcome.Record // For JSON array output
}

func NewConsoleSink(w io.Writer, format string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{writer: w, format: format}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		r, ok := v.(outcome.Record)
		if !ok {
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
		s.records = append(s.records, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case outcome.Record:
			if err := encoder.Encode(eventFromRecord(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		r, ok := v.(outcome.Record)
		if !ok {
			// Ignore events in text mode.
			return nil
		}
		if _, err := fmt.Fprintln(s.writer, formatTextLine(r)); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func formatTextLine(r outcome.Record) string {
	var b strings.Builder

	if r.Status == outcome.StatusDone {
		b.WriteString(fmt.Sprintf("%s %s (%s)", doneTag("[DONE]"), r.Student, r.Repo))
	} else {
		b.WriteString(fmt.Sprintf("%s %s (%s) at %s: %s",
			failedTag("[FAILED]"), r.Student, r.Repo, r.FailedStage, r.Reason))
	}

	if r.ResolvedCommit != "" {
		b.WriteString(" " + commitNote("@"+shortHash(r.ResolvedCommit)))
	}
	if len(r.StagesRepaired) > 0 {
		names := make([]string, len(r.StagesRepaired))
		for i, s := range r.StagesRepaired {
			names[i] = string(s)
		}
		b.WriteString(" " + repairNote("repaired: "+strings.Join(names, ", ")))
	}
	if len(r.Conflicts) > 0 {
		b.WriteString(" " + repairNote(fmt.Sprintf("conflicts: %d", len(r.Conflicts))))
	}
	return b.String()
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.records); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
