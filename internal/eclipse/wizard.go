package eclipse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrDescriptorUnwritable wraps failures to write a repaired descriptor back
// to disk. Repairs never fail on content; only the single write can fail.
var ErrDescriptorUnwritable = errors.New("descriptor unwritable")

// Ensure validates the descriptor at path with check and rewrites it in place
// only when a repair is needed. A missing or unreadable file counts as needing
// repair; validation itself never fails. The returned CheckResult reports what
// happened so the caller can record repaired stages.
func Ensure(path string, check func([]byte) CheckResult) (CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		res := check(nil)
		res.Issues = append([]string{"file missing or unreadable"}, res.Issues...)
		if werr := writeDescriptor(path, res.Content); werr != nil {
			return res, werr
		}
		return res, nil
	}

	res := check(data)
	if res.State == StateValid {
		return res, nil
	}
	if werr := writeDescriptor(path, res.Content); werr != nil {
		return res, werr
	}
	return res, nil
}

// EnsureProject validates or repairs the .project descriptor at path.
func EnsureProject(path string) (CheckResult, error) {
	return Ensure(path, CheckProject)
}

// EnsureClasspath validates or repairs the .classpath descriptor at path.
func EnsureClasspath(path string) (CheckResult, error) {
	return Ensure(path, CheckClasspath)
}

func writeDescriptor(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDescriptorUnwritable, path, err)
	}
	return nil
}

// FindDescriptor searches the project tree for the named descriptor file and
// returns the match closest to the root. Students routinely nest the Eclipse
// project one or more directories below the repository root, so the descriptor
// is not required to be top-level. Returns "" when no match exists.
func FindDescriptor(root, filename string) (string, error) {
	var best string
	bestDepth := -1

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Never descend into VCS metadata.
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != filename {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		depth := strings.Count(rel, string(filepath.Separator))
		if bestDepth == -1 || depth < bestDepth {
			best = path
			bestDepth = depth
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return best, nil
}
