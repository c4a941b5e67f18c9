package cli

import (
	"errors"
	"fmt"

	cgerrors "github.com/ariel-frischer/changegen/internal/errors"
)

// Exit codes for the changegen CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates the changelog could not be regenerated
	ExitFailure = 1

	// ExitOutOfSync indicates `changegen check` found a stale changelog
	ExitOutOfSync = 2

	// ExitInvalidArguments indicates invalid arguments or configuration
	ExitInvalidArguments = 3
)

// ExitError requests a specific process exit code. Err, when set, is what
// gets reported to the user; a nil Err means the command already printed
// everything it had to say.
type ExitError struct {
	Code int
	Err  error
}

// NewExitError creates an ExitError with no message of its own.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func asExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if exitErr, ok := asExitError(err); ok {
		return exitErr.Code
	}
	if cliErr := cgerrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case cgerrors.Argument, cgerrors.Configuration:
			return ExitInvalidArguments
		}
	}
	return ExitFailure
}
