package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func withoutEnv(keys ...string) []string {
	out := make([]string, 0, len(os.Environ()))
outer:
	for _, e := range os.Environ() {
		for _, key := range keys {
			if strings.HasPrefix(e, key+"=") {
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	// internal/cli -> repo root
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func goExe() string {
	if runtime.GOOS == "windows" {
		return "go.exe"
	}
	return "go"
}

func buildProjMedicBinary(t *testing.T) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "projmedic-test")
	if runtime.GOOS == "windows" {
		outPath += ".exe"
	}

	cmd := exec.Command(goExe(), "build", "-o", outPath, "./cmd/projmedic")
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build projmedic binary: %v; output=%s", err, string(out))
	}

	return outPath
}

// cloneCommand runs the binary in an empty directory with the projmedic env
// defaults stripped, so no ambient .env or PROJMEDIC_* value leaks in.
func cloneCommand(t *testing.T, binary string, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(binary, append([]string{"clone"}, args...)...)
	cmd.Dir = t.TempDir()
	cmd.Env = withoutEnv("PROJMEDIC_ROSTER", "PROJMEDIC_ORG", "PROJMEDIC_TARGET_DIR")
	return cmd
}

func wantExitCode(t *testing.T, err error, out []byte, want int) {
	t.Helper()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v; output=%s", err, err, string(out))
	}
	if code := exitErr.ProcessState.ExitCode(); code != want {
		t.Fatalf("expected exit code %d, got %d; output=%s", want, code, string(out))
	}
}

func TestClone_ExitCode3_WhenAssignmentTypeMissing(t *testing.T) {
	binary := buildProjMedicBinary(t)
	// Pass a flag to bypass the "print help if no flags" check and force
	// validation to run without the positional assignment type.
	cmd := cloneCommand(t, binary, "--number", "1")

	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit; output=%s", string(out))
	}
	wantExitCode(t, err, out, 3)
	if !strings.Contains(string(out), "assignment type is required") {
		t.Fatalf("expected validation message; output=%s", string(out))
	}
}

func TestClone_ExitCode3_WhenOrgMissing(t *testing.T) {
	binary := buildProjMedicBinary(t)
	cmd := cloneCommand(t, binary, "lab")

	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit; output=%s", string(out))
	}
	wantExitCode(t, err, out, 3)
	if !strings.Contains(string(out), "--org is required") {
		t.Fatalf("expected validation message; output=%s", string(out))
	}
}

func TestClone_ExitCode3_WhenOutFormatCannotBeInferred(t *testing.T) {
	binary := buildProjMedicBinary(t)
	cmd := cloneCommand(t, binary, "lab", "--org", "cs-course", "--out", "results.unknown")

	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit; output=%s", string(out))
	}
	wantExitCode(t, err, out, 3)
	if !strings.Contains(string(out), "cannot infer output format") {
		t.Fatalf("expected output format inference error; output=%s", string(out))
	}
}

func TestClone_ExitCode3_WhenDeadlineMalformed(t *testing.T) {
	binary := buildProjMedicBinary(t)
	cmd := cloneCommand(t, binary, "lab", "--org", "cs-course", "--deadline", "09-09-2025")

	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit; output=%s", string(out))
	}
	wantExitCode(t, err, out, 3)
	if !strings.Contains(string(out), "invalid --deadline") {
		t.Fatalf("expected deadline validation message; output=%s", string(out))
	}
}

func TestClone_DryRun_PrintsRosterPlanWithoutCloning(t *testing.T) {
	binary := buildProjMedicBinary(t)

	dir := t.TempDir()
	roster := filepath.Join(dir, "students.csv")
	if err := os.WriteFile(roster, []byte("student,username\nAlice Smith,asmith\nBob Jones,bjones\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(binary, "clone", "lab",
		"--number", "1",
		"--org", "cs-course",
		"--roster", roster,
		"--dry-run",
	)
	cmd.Dir = dir
	cmd.Env = withoutEnv("PROJMEDIC_ROSTER", "PROJMEDIC_ORG", "PROJMEDIC_TARGET_DIR")

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("dry run failed: %v; output=%s", err, string(out))
	}
	if !strings.Contains(string(out), "lab-1-asmith (Alice Smith)") || !strings.Contains(string(out), "lab-1-bjones (Bob Jones)") {
		t.Fatalf("expected resolved repositories in output; output=%s", string(out))
	}
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				t.Fatalf("dry run must not create working copies; found %s", e.Name())
			}
		}
	}
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	binary := buildProjMedicBinary(t)
	out, err := exec.Command(binary, "version").CombinedOutput()
	if err != nil {
		t.Fatalf("version failed: %v; output=%s", err, string(out))
	}
	if !strings.Contains(string(out), "projmedic") || !strings.Contains(string(out), "commit:") {
		t.Fatalf("unexpected version output: %s", string(out))
	}
}
