package datasource

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tradeforge/rangebreak/internal/types"
)

// InMemoryDataSource serves range instances already materialized by the
// caller. Used by tests and by programmatic callers that bypass files.
type InMemoryDataSource struct {
	instances []types.RangeInstance
}

// NewInMemoryDataSource creates a data source over the given instances.
// The slice is copied and sorted by window close time.
func NewInMemoryDataSource(instances []types.RangeInstance) DataSource {
	sorted := make([]types.RangeInstance, len(instances))
	copy(sorted, instances)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClosedAt.Before(sorted[j].ClosedAt)
	})

	return &InMemoryDataSource{instances: sorted}
}

// Initialize implements DataSource. The in-memory source has nothing to load.
func (d *InMemoryDataSource) Initialize(path string) error {
	return nil
}

// ReadAll implements DataSource.
func (d *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.RangeInstance, error) bool) {
	return func(yield func(types.RangeInstance, error) bool) {
		for _, instance := range d.instances {
			if !withinBounds(instance.ClosedAt, start, end) {
				continue
			}

			if !yield(instance, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (d *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, instance := range d.instances {
		if withinBounds(instance.ClosedAt, start, end) {
			count++
		}
	}

	return count, nil
}

// Close implements DataSource.
func (d *InMemoryDataSource) Close() error {
	return nil
}

func withinBounds(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
