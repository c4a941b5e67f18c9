// Package health provides environment checks for changegen. It validates that
// the repository can be read, that the configured backend is usable and that
// the changelog can be written, returning structured reports used by the
// 'changegen doctor' command.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/changegen/internal/config"
	"github.com/ariel-frischer/changegen/internal/git"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

func (r *HealthReport) add(check CheckResult) {
	r.Checks = append(r.Checks, check)
	if !check.Passed {
		r.Passed = false
	}
}

// RunHealthChecks runs all health checks for cfg and returns a report.
func RunHealthChecks(ctx context.Context, cfg *config.Configuration) *HealthReport {
	report := &HealthReport{
		Checks: make([]CheckResult, 0, 4),
		Passed: true,
	}

	report.add(CheckGitCLI(cfg.Backend))

	history, repoCheck := CheckRepository(cfg)
	report.add(repoCheck)
	if history != nil {
		report.add(CheckTags(ctx, history))
	}

	report.add(CheckOutputWritable(cfg.Output))
	return report
}

// CheckGitCLI checks for the git binary. It is only required by the cli backend.
func CheckGitCLI(backend string) CheckResult {
	err := git.CLIAvailable()
	switch {
	case err == nil:
		return CheckResult{Name: "Git CLI", Passed: true, Message: "git binary found"}
	case backend == git.BackendCLI:
		return CheckResult{Name: "Git CLI", Passed: false, Message: "git not found in PATH (required by --backend cli)"}
	default:
		return CheckResult{Name: "Git CLI", Passed: true, Message: "git not found (only needed for --backend cli)"}
	}
}

// CheckRepository opens the repository with the configured backend.
func CheckRepository(cfg *config.Configuration) (git.History, CheckResult) {
	history, err := git.OpenBackend(cfg.Backend, cfg.RepoPath)
	if err != nil {
		return nil, CheckResult{Name: "Repository", Passed: false, Message: err.Error()}
	}
	return history, CheckResult{
		Name:    "Repository",
		Passed:  true,
		Message: fmt.Sprintf("opened %s with the %s backend", cfg.RepoPath, backendName(cfg.Backend)),
	}
}

// CheckTags lists tags. No tags is not a failure: everything lands under Unreleased.
func CheckTags(ctx context.Context, history git.History) CheckResult {
	tags, err := history.Tags(ctx)
	if err != nil {
		return CheckResult{Name: "Tags", Passed: false, Message: err.Error()}
	}
	if len(tags) == 0 {
		return CheckResult{Name: "Tags", Passed: true, Message: "no tags yet; all commits go under Unreleased"}
	}
	return CheckResult{
		Name:    "Tags",
		Passed:  true,
		Message: fmt.Sprintf("%d found, latest %s", len(tags), tags[len(tags)-1]),
	}
}

// CheckOutputWritable verifies a file can be created next to the changelog.
func CheckOutputWritable(output string) CheckResult {
	dir := filepath.Dir(output)
	tmp, err := os.CreateTemp(dir, ".changegen-doctor-*")
	if err != nil {
		return CheckResult{Name: "Output", Passed: false, Message: fmt.Sprintf("cannot write to %s: %v", dir, err)}
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return CheckResult{Name: "Output", Passed: true, Message: fmt.Sprintf("%s is writable", output)}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var b strings.Builder
	for _, check := range report.Checks {
		if check.Passed {
			fmt.Fprintf(&b, "✓ %s: %s\n", check.Name, check.Message)
		} else {
			fmt.Fprintf(&b, "✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return b.String()
}

func backendName(backend string) string {
	if backend == "" {
		return git.BackendGoGit
	}
	return backend
}
