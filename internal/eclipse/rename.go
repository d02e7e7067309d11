package eclipse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingNameField is returned when Rename runs against a descriptor with
// no name element. The wizard guarantees the element exists before the rename
// stage runs, so this is a defensive contract boundary, not an expected path.
var ErrMissingNameField = errors.New("descriptor has no name field")

// Rename sets the project name in the .project descriptor at path to newName.
// Only the name element's content is spliced; all other bytes are preserved.
// Renaming an already-correctly-named project is a no-op and does not rewrite
// the file. Reports whether the file changed.
func Rename(path, newName string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read descriptor: %w", err)
	}

	current, span, found, err := projectName(data)
	if err != nil {
		return false, fmt.Errorf("parse descriptor: %w", err)
	}
	if !found {
		return false, fmt.Errorf("%w: %s", ErrMissingNameField, path)
	}
	if current == newName {
		return false, nil
	}

	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(newName)); err != nil {
		return false, err
	}

	replacement := escaped.Bytes()
	if span.selfClosed {
		// <name/> has no interior: rewrite the tag as a normal element.
		replacement = append(append([]byte("<name>"), replacement...), []byte("</name>")...)
	}

	out := make([]byte, 0, len(data)+len(replacement))
	out = append(out, data[:span.start]...)
	out = append(out, replacement...)
	out = append(out, data[span.end:]...)

	if err := writeDescriptor(path, out); err != nil {
		return false, err
	}
	return true, nil
}

// DeriveProjectName derives the unique project name from a repository origin
// reference: the final path segment with any .git suffix stripped. The same
// origin always yields the same name, and per-student repository names are
// unique within an assignment, so imported projects never collide.
func DeriveProjectName(originRef string) string {
	ref := strings.TrimRight(strings.TrimSpace(originRef), "/")
	if i := strings.LastIndexAny(ref, "/:"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.TrimSuffix(ref, ".git")
}
