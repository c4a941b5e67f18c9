package git

import (
	"context"
	"fmt"

	"github.com/ariel-frischer/changegen/internal/changelog"
)

// Backend names accepted by OpenBackend.
const (
	BackendGoGit = "gogit"
	BackendCLI   = "cli"
)

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendGoGit, BackendCLI}
}

// History is a changelog history source that also knows where its refs live.
type History interface {
	changelog.History
	GitDir(ctx context.Context) (string, error)
}

// OpenBackend opens the repository at path with the named backend.
func OpenBackend(backend, path string) (History, error) {
	switch backend {
	case BackendGoGit, "":
		r, err := Open(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendCLI:
		r, err := OpenCLI(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownBackend, backend, Backends())
	}
}
