package driving

import (
	"context"

	"github.com/secops-tools/socrag-cli/internal/core/domain"
)

// StatusService reports the state of the index and its backends.
type StatusService interface {
	// Status gathers index counts, artifact size and backend
	// reachability. An unreachable backend is reported, not an error.
	Status(ctx context.Context) (domain.SystemStatus, error)
}
