package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the changegen CLI.
// These templates ensure consistent, actionable error messages.

// RegenerationFailedPrefix starts every message reported when a run fails.
const RegenerationFailedPrefix = "Failed to regenerate changelog"

// RegenerationFailed wraps any failure of a generate run. The message always
// reads "Failed to regenerate changelog: <cause>".
func RegenerationFailed(err error) *CLIError {
	if cliErr := AsCLIError(err); cliErr != nil {
		wrapped := *cliErr
		if !strings.HasPrefix(wrapped.Message, RegenerationFailedPrefix) {
			wrapped.Message = fmt.Sprintf("%s: %s", RegenerationFailedPrefix, cliErr.Message)
		}
		wrapped.Err = err
		return &wrapped
	}
	return WrapWithMessage(err, Runtime, RegenerationFailedPrefix)
}

// NotARepository creates an error when no git repository encloses path.
func NotARepository(path string, err error) *CLIError {
	return &CLIError{
		Category: Repository,
		Message:  fmt.Sprintf("%s is not inside a git repository", path),
		Remediation: []string{
			"Run changegen from inside a git working tree",
			"Or point at one with: changegen --repo <path>",
		},
		Err: err,
	}
}

// GitNotFound creates an error when the cli backend cannot find the git binary.
func GitNotFound(err error) *CLIError {
	return &CLIError{
		Category: Repository,
		Message:  "git command not found",
		Remediation: []string{
			"Install git and make sure it is in your PATH",
			"Or use the built-in backend: changegen --backend gogit",
		},
		Err: err,
	}
}

// UnknownBackend creates an error for an unsupported --backend value.
func UnknownBackend(name string, supported []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown backend: %s", name),
		"changegen --backend <"+strings.Join(supported, "|")+">",
		"Supported backends: "+strings.Join(supported, ", "),
	)
}

// InvalidConfig creates an error for a config file or value that failed validation.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Check .changegen.yml and CHANGEGEN_* environment variables",
		"Inspect the effective values with: changegen config show",
	)
}

// ChangelogOutOfSync creates an error when the changelog on disk differs
// from what the history would produce.
func ChangelogOutOfSync(path string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("%s is out of date", path),
		"Regenerate it with: changegen generate",
		"Then commit the updated file",
	)
}

// FileNotWritable creates an error when the changelog cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  fmt.Sprintf("cannot write to file: %s", path),
		Remediation: []string{
			"Check file permissions: ls -la " + path,
			"Ensure parent directory exists and is writable",
		},
		Err: err,
	}
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'changegen <command> --help' to see valid options",
	)
}
