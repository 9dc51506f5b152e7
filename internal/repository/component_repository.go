// internal/repository/component_repository.go
package repository

import (
	"context"

	"github.com/opsdash/backend-go/internal/domain"
)

// ComponentFilter narrows component listings.
type ComponentFilter struct {
	Search          string
	Limit           int
	Offset          int
	IncludeInactive bool
}

type ComponentRepository interface {
	Create(ctx context.Context, component *domain.Component) error
	Update(ctx context.Context, component *domain.Component) error
	GetByID(ctx context.Context, id int64) (*domain.Component, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Component, error)
	List(ctx context.Context, filter ComponentFilter) ([]*domain.Component, error)
	ListActive(ctx context.Context) ([]*domain.Component, error)
	Deactivate(ctx context.Context, id int64) error
}
