package roster

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Entry is one roster row mapping a student to their GitHub username.
type Entry struct {
	Student  string `csv:"student"`
	Username string `csv:"username"`
}

// Load reads the roster CSV at path. The expected header is "student,username".
// Rows with a blank student or username are skipped rather than failing the
// run: partially filled rosters are the norm mid-semester.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	var rows []Entry
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		student := strings.TrimSpace(row.Student)
		username := strings.TrimSpace(row.Username)
		if student == "" || username == "" {
			continue
		}
		entries = append(entries, Entry{Student: student, Username: username})
	}
	return entries, nil
}
