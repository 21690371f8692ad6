package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/tradeforge/rangebreak/internal/types"
)

// DataSource supplies historical range instances with their subsequent
// price action. The data layer owns the instances; the engine borrows them
// read-only for evaluation.
type DataSource interface {
	// Initialize loads the data source with the given data path.
	Initialize(path string) error
	// ReadAll yields every range instance whose window closed inside the
	// optional time bounds, ordered by close time.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.RangeInstance, error) bool)
	// Count returns the number of range instances inside the bounds.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources.
	Close() error
}
