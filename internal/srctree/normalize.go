package srctree

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceRootName is the canonical source root directory for a Java project.
const SourceRootName = "src"

const sourceExtension = ".java"

type ActionKind string

const (
	// ActionMoved relocated a source unit to its package-derived path.
	ActionMoved ActionKind = "moved"
	// ActionNone means the unit was already at its required path.
	ActionNone ActionKind = "none"
	// ActionConflict means the destination was occupied by a different file;
	// the move was skipped and neither file was touched.
	ActionConflict ActionKind = "conflict"
	// ActionAmbiguousRoot means the canonical source root could not be
	// created because an unrelated entry occupies its name.
	ActionAmbiguousRoot ActionKind = "ambiguous-source-root"
)

// Action is one entry of the ordered relocation log. Paths are relative to
// the project root.
type Action struct {
	Kind   ActionKind
	Source string
	Dest   string
	Reason string
}

// Normalize reorganizes the Java sources under projectRoot into a
// package-mirroring tree rooted at the canonical source root. An existing src
// directory anywhere in the tree (students often nest the project) is adopted
// in place; only when none exists is a top-level src/ created. Normalize never
// deletes files and never overwrites unrelated content: it only creates
// directories and relocates files, recording every decision in the returned
// ordered action log. Running it twice yields zero additional relocations.
func Normalize(projectRoot string) ([]Action, error) {
	srcRoot, err := findSourceRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	sources, err := collectSources(projectRoot, srcRoot)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}

	var actions []Action

	if srcRoot == "" {
		ok, err := createSourceRoot(projectRoot)
		if err != nil {
			return nil, err
		}
		if !ok {
			// An unrelated entry occupies the source root name. Record the
			// issue and leave the tree alone rather than guessing.
			actions = append(actions, Action{
				Kind:   ActionAmbiguousRoot,
				Dest:   SourceRootName,
				Reason: "an existing non-directory entry occupies the source root name",
			})
			return actions, nil
		}
		srcRoot = SourceRootName
	}

	for _, rel := range sources {
		abs := filepath.Join(projectRoot, rel)
		data, err := os.ReadFile(abs)
		if err != nil {
			return actions, err
		}

		segments := PackagePath(data)
		destRel := filepath.Join(append(append([]string{srcRoot}, segments...), filepath.Base(rel))...)
		if destRel == rel {
			actions = append(actions, Action{Kind: ActionNone, Source: rel, Dest: destRel})
			continue
		}

		destAbs := filepath.Join(projectRoot, destRel)
		if _, err := os.Lstat(destAbs); err == nil {
			actions = append(actions, Action{
				Kind:   ActionConflict,
				Source: rel,
				Dest:   destRel,
				Reason: "destination already occupied by a different file",
			})
			continue
		} else if !os.IsNotExist(err) {
			return actions, err
		}

		if err := os.MkdirAll(filepath.Dir(destAbs), 0755); err != nil {
			return actions, err
		}
		if err := os.Rename(abs, destAbs); err != nil {
			return actions, err
		}
		actions = append(actions, Action{Kind: ActionMoved, Source: rel, Dest: destRel})
	}

	return actions, nil
}

// findSourceRoot locates an existing source root directory anywhere in the
// tree and returns its root-relative path, preferring the match closest to
// the root. Returns "" when no src directory exists.
func findSourceRoot(root string) (string, error) {
	var best string
	bestDepth := -1

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.Name() != SourceRootName || path == root {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		depth := strings.Count(rel, string(filepath.Separator))
		if bestDepth == -1 || depth < bestDepth {
			best = rel
			bestDepth = depth
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return best, nil
}

// collectSources lists Java files under root that are not already under the
// canonical source root, in deterministic walk order, as root-relative paths.
func collectSources(root, srcRoot string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), sourceExtension) {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		if underSourceRoot(rel, srcRoot) {
			return nil
		}
		sources = append(sources, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func underSourceRoot(rel, srcRoot string) bool {
	if srcRoot == "" {
		return false
	}
	return strings.HasPrefix(rel, srcRoot+string(filepath.Separator))
}

// createSourceRoot makes a top-level source root directory. ok is false when
// the name is occupied by something that is not a directory.
func createSourceRoot(projectRoot string) (bool, error) {
	abs := filepath.Join(projectRoot, SourceRootName)
	info, err := os.Lstat(abs)
	if err == nil {
		if !info.IsDir() {
			return false, nil
		}
		return true, nil
	}
	if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.Mkdir(abs, 0755); err != nil {
		return false, err
	}
	return true, nil
}
