package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	// changegenBinaryPath caches the built changegen binary path.
	changegenBinaryPath string
	changegenBuildOnce  sync.Once
	changegenBuildErr   error
)

// E2EEnv runs the real changegen binary against a fixture repository with
// an isolated HOME and config directory, so the developer's own settings
// never influence a test.
type E2EEnv struct {
	t    *testing.T
	Repo *GitRepo
	home string
}

// CommandResult captures the result of running a changegen command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv builds changegen (once per test binary) and creates a fresh
// fixture repository to run it in. Tests are skipped in -short mode or when
// the go toolchain is not on PATH.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}

	changegenBuildOnce.Do(func() {
		changegenBinaryPath, changegenBuildErr = buildChangegen()
	})
	if changegenBuildErr != nil {
		t.Fatalf("building changegen: %v", changegenBuildErr)
	}

	return &E2EEnv{
		t:    t,
		Repo: NewGitRepo(t),
		home: t.TempDir(),
	}
}

func buildChangegen() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	// internal/testutil/ -> repo root
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "changegen-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "changegen")
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/changegen")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("go build: %w\nOutput: %s", err, output)
	}
	return binaryPath, nil
}

// Run executes changegen inside the fixture repository.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(changegenBinaryPath, args...)
	cmd.Dir = e.Repo.Dir
	cmd.Env = e.isolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("running changegen: %v", err)
		}
	}
	return result
}

// ReadFile returns the contents of a file relative to the fixture repository.
func (e *E2EEnv) ReadFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.Repo.Dir, name))
	if err != nil {
		e.t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// WriteFile writes a file relative to the fixture repository.
func (e *E2EEnv) WriteFile(name, content string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.Repo.Dir, name), []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
}

func (e *E2EEnv) isolatedEnv() []string {
	env := []string{
		"HOME=" + e.home,
		"XDG_CONFIG_HOME=" + filepath.Join(e.home, ".config"),
		"NO_COLOR=1",
	}

	// safe variables from the original environment; CHANGEGEN_* is
	// deliberately never passed through
	for _, key := range []string{"PATH", "LANG", "LC_ALL", "TMPDIR", "TMP", "TEMP", "SYSTEMROOT"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

// HasChangegenEnv reports whether any CHANGEGEN_ variable leaks into the
// environment commands run with.
func (e *E2EEnv) HasChangegenEnv() bool {
	for _, v := range e.isolatedEnv() {
		if strings.HasPrefix(v, "CHANGEGEN_") {
			return true
		}
	}
	return false
}
