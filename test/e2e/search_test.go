package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

// buildMyreports builds the myreports binary for testing.
func buildMyreports(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "myreports")

	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// test/e2e -> module root
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/myreports")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

func dumpLogs(t *testing.T, homeDir string) {
	matches, _ := filepath.Glob(filepath.Join(logDir(homeDir), "*.log"))
	for _, m := range matches {
		if logs, err := os.ReadFile(m); err == nil {
			t.Logf("%s:\n%s", filepath.Base(m), logs)
		}
	}
}

func TestE2E_PartnerPicker(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary")
	}
	binPath := buildMyreports(t)

	homeDir := t.TempDir()
	cfgPath, err := writeConfig(homeDir)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := exec.Command(binPath, "--config", cfgPath)
	cmd.Env = append(os.Environ(), "HOME="+homeDir, "XDG_CONFIG_HOME="+homeDir)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Fatalf("failed to start pty: %v", err)
	}
	defer func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
	}()

	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: 120, Rows: 40}); err != nil {
		t.Fatalf("failed to set pty size: %v", err)
	}

	var outputBuf bytes.Buffer
	console, err := expect.NewConsole(
		expect.WithStdin(ptmx),
		expect.WithStdout(&outputBuf),
		expect.WithDefaultTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	defer console.Close()

	// 1. Report starts with its default name and fields
	if _, err := console.ExpectString("Contacts Report"); err != nil {
		dumpLogs(t, homeDir)
		t.Fatalf("startup failed: %v\nScreen:\n%s", err, outputBuf.String())
	}
	if _, err := console.ExpectString("Partners"); err != nil {
		t.Fatalf("partner field not shown: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 2. Move to the partner row (date, location, tags, partner) and open it
	time.Sleep(300 * time.Millisecond)
	if _, err := console.Send("jjj"); err != nil {
		t.Fatalf("failed to move cursor: %v", err)
	}
	if _, err := console.Send("\r"); err != nil {
		t.Fatalf("failed to send Enter: %v", err)
	}

	// 3. Hints come from the seeded fixture
	if _, err := console.ExpectString("Acme Staffing"); err != nil {
		dumpLogs(t, homeDir)
		t.Fatalf("partner hints not shown: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 4. Narrow the search
	if _, err := console.Send("glob"); err != nil {
		t.Fatalf("failed to type query: %v", err)
	}
	if _, err := console.ExpectString("Globex Veterans Network"); err != nil {
		t.Fatalf("narrowed hints not shown: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 5. Leave the picker, then quit
	time.Sleep(300 * time.Millisecond)
	if _, err := console.Send("\x1b"); err != nil {
		t.Fatalf("failed to send Esc: %v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if _, err := console.Send("q"); err != nil {
		t.Fatalf("failed to send q: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Error("process did not exit after 'q'")
	}
}
