package srctree

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func mustExist(t *testing.T, root, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
		t.Fatalf("expected %s to exist: %v", rel, err)
	}
}

func countKind(actions []Action, kind ActionKind) int {
	n := 0
	for _, a := range actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func TestNormalize_MovesByPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Board.java", "package com.x;\npublic class Board {}\n")
	writeFile(t, root, "code/Game.java", "package com.x;\npublic class Game {}\n")
	writeFile(t, root, "Main.java", "public class Main {}\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	mustExist(t, root, filepath.Join("src", "com", "x", "Board.java"))
	mustExist(t, root, filepath.Join("src", "com", "x", "Game.java"))
	mustExist(t, root, filepath.Join("src", "Main.java"))

	if got := countKind(actions, ActionMoved); got != 3 {
		t.Fatalf("expected 3 moves, got %d: %+v", got, actions)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Board.java", "package com.x;\npublic class Board {}\n")
	writeFile(t, root, "Main.java", "public class Main {}\n")

	if _, err := Normalize(root); err != nil {
		t.Fatalf("first Normalize returned error: %v", err)
	}
	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("second Normalize returned error: %v", err)
	}
	if got := countKind(actions, ActionMoved); got != 0 {
		t.Fatalf("second run relocated %d files: %+v", got, actions)
	}
}

func TestNormalize_NoSourcesNoSourceRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "just docs\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("expected no actions, got %+v", actions)
	}
	if _, err := os.Stat(filepath.Join(root, SourceRootName)); !os.IsNotExist(err) {
		t.Fatal("source root must not be created when there are no sources")
	}
}

func TestNormalize_ExistingSourceRootReused(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("src", "com", "x", "Placed.java"), "package com.x;\nclass Placed {}\n")
	writeFile(t, root, "Stray.java", "package com.x;\nclass Stray {}\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	// Already-placed file stays put and is not even scanned; the stray joins it.
	mustExist(t, root, filepath.Join("src", "com", "x", "Placed.java"))
	mustExist(t, root, filepath.Join("src", "com", "x", "Stray.java"))
	if got := countKind(actions, ActionMoved); got != 1 {
		t.Fatalf("expected 1 move, got %d: %+v", got, actions)
	}
}

func TestNormalize_NestedSourceRootAdopted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("code", "src", "com", "x", "Placed.java"), "package com.x;\nclass Placed {}\n")
	writeFile(t, root, "Stray.java", "package com.x;\nclass Stray {}\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	// The nested root is adopted in place: already-placed files stay put and
	// strays join them there; no top-level src/ appears next to it.
	mustExist(t, root, filepath.Join("code", "src", "com", "x", "Placed.java"))
	mustExist(t, root, filepath.Join("code", "src", "com", "x", "Stray.java"))
	if got := countKind(actions, ActionMoved); got != 1 {
		t.Fatalf("expected 1 move, got %d: %+v", got, actions)
	}
	if _, err := os.Stat(filepath.Join(root, SourceRootName)); !os.IsNotExist(err) {
		t.Fatal("top-level source root must not be created when a nested one exists")
	}
}

func TestNormalize_ShallowestSourceRootWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("src", "Keep.java"), "class Keep {}\n")
	writeFile(t, root, filepath.Join("code", "src", "Deep.java"), "class Deep {}\n")
	writeFile(t, root, "Stray.java", "class Stray {}\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	mustExist(t, root, filepath.Join("src", "Stray.java"))
	mustExist(t, root, filepath.Join("src", "Keep.java"))
	// The deeper src is just a directory like any other; its file counts as a
	// stray relative to the adopted root.
	mustExist(t, root, filepath.Join("src", "Deep.java"))
	if got := countKind(actions, ActionMoved); got != 2 {
		t.Fatalf("expected 2 moves, got %d: %+v", got, actions)
	}
}

func TestNormalize_DestinationConflictRecorded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("a", "Board.java"), "package com.x;\nclass Board { int a; }\n")
	writeFile(t, root, filepath.Join("b", "Board.java"), "package com.x;\nclass Board { int b; }\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if got := countKind(actions, ActionMoved); got != 1 {
		t.Fatalf("expected exactly 1 move, got %d: %+v", got, actions)
	}
	if got := countKind(actions, ActionConflict); got != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d: %+v", got, actions)
	}

	// Neither file may be deleted: one at the destination, one still at its origin.
	mustExist(t, root, filepath.Join("src", "com", "x", "Board.java"))
	if _, errA := os.Stat(filepath.Join(root, "a", "Board.java")); errA != nil {
		if _, errB := os.Stat(filepath.Join(root, "b", "Board.java")); errB != nil {
			t.Fatal("conflicting source file was deleted")
		}
	}
}

func TestNormalize_AmbiguousSourceRoot(t *testing.T) {
	root := t.TempDir()
	// A regular file squatting on the source root name.
	writeFile(t, root, SourceRootName, "not a directory\n")
	writeFile(t, root, "Board.java", "package com.x;\nclass Board {}\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if got := countKind(actions, ActionAmbiguousRoot); got != 1 {
		t.Fatalf("expected ambiguous-source-root action, got %+v", actions)
	}
	if got := countKind(actions, ActionMoved); got != 0 {
		t.Fatalf("no file may move when the source root is ambiguous: %+v", actions)
	}

	// The squatting file must never be overwritten.
	data, err := os.ReadFile(filepath.Join(root, SourceRootName))
	if err != nil || string(data) != "not a directory\n" {
		t.Fatalf("source root squatter modified: %q, %v", data, err)
	}
	mustExist(t, root, "Board.java")
}

func TestNormalize_SkipsGitDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join(".git", "Hook.java"), "package com.x;\nclass Hook {}\n")

	actions, err := Normalize(root)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("files under .git must be ignored: %+v", actions)
	}
}
