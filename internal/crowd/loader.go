package crowd

import (
	"context"
	"errors"
)

// ErrDatasetUnavailable is returned by loaders when the prediction table is
// missing or unreadable.
var ErrDatasetUnavailable = errors.New("crowd dataset unavailable")

// Loader abstracts a prediction table source (Excel file, CSV, remote file, Postgres).
type Loader interface {
	Name() string
	Load(ctx context.Context) ([]Row, error)
}

// Registry is the read-only place lookup used by the selectors.
type Registry interface {
	// Lookup matches a free-text name against the registry, ignoring case
	// and surrounding whitespace.
	Lookup(name string) (Place, bool)
	Places() []Place
}
