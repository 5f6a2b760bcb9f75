// Package store persists the provisioning history.
package store

import (
	"context"

	"github.com/sells-group/province-map/internal/model"
)

// Store defines the persistence interface for provisioning history.
type Store interface {
	RecordProvision(ctx context.Context, p model.Provision) (*model.Provision, error)
	ListProvisions(ctx context.Context, limit int) ([]model.Provision, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
