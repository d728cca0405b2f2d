// ABOUTME: Integration tests for coach CLI.
// ABOUTME: Builds the binary and runs a full logging, analysis, and snapshot workflow.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	projectRoot, _ := filepath.Abs("..")
	coachBinary := filepath.Join(t.TempDir(), "coach")

	buildCmd := exec.Command("go", "build", "-o", coachBinary, "./cmd/coach")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	tmpDir := t.TempDir()
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
		"COACH_USER=yoel",
		"COACH_BACKEND=sqlite",
		"OPENAI_API_KEY=",
		"NO_COLOR=1",
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(coachBinary, args...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}
	mustRun := func(args ...string) string {
		t.Helper()
		output, err := run(args...)
		if err != nil {
			t.Fatalf("coach %s failed: %v\n%s", strings.Join(args, " "), err, output)
		}
		return output
	}

	days := [][]string{
		{"--date", "2025-01-11", "--training", "Pull Day - light", "--energy", "4"},
		{"--date", "2025-01-12", "--training", "Leg day", "--energy", "6", "--soreness", "knee"},
		{"--date", "2025-01-13", "--training", "Push Day - Moderate", "--energy", "8", "--sleep", "7.5"},
	}
	for _, day := range days {
		output := mustRun(append([]string{"log"}, day...)...)
		if !strings.Contains(output, "Logged") {
			t.Errorf("Expected 'Logged' in output, got: %s", output)
		}
	}

	output := mustRun("list")
	for _, date := range []string{"2025-01-11", "2025-01-12", "2025-01-13"} {
		if !strings.Contains(output, date) {
			t.Errorf("Expected %s in list output, got: %s", date, output)
		}
	}

	output = mustRun("trends", "weekly")
	if !strings.Contains(output, "Training days:  3") {
		t.Errorf("Expected weekly summary, got: %s", output)
	}

	output = mustRun("chat", "what should I train today?")
	if !strings.Contains(output, "Push/Pull/Legs") {
		t.Errorf("Expected split-aware reply, got: %s", output)
	}

	mustRun("export")
	output = mustRun("status")
	if !strings.Contains(output, "In sync") {
		t.Errorf("Expected in-sync status after export, got: %s", output)
	}

	backup := filepath.Join(tmpDir, "backup.yaml")
	mustRun("export", "yaml", "-o", backup)
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("backup not written: %v", err)
	}

	mustRun("delete", "2025-01-12")
	output = mustRun("list")
	if strings.Contains(output, "2025-01-12") {
		t.Errorf("deleted day still listed: %s", output)
	}

	output = mustRun("import", backup)
	if !strings.Contains(output, "Applied:  3") {
		t.Errorf("Expected 3 applied, got: %s", output)
	}
	output = mustRun("show", "2025-01-12")
	if !strings.Contains(output, "knee") {
		t.Errorf("Expected restored soreness, got: %s", output)
	}

	if _, err := run("delete", "2025-01-20"); err == nil {
		t.Error("Expected error deleting a day that was never logged")
	}
}
