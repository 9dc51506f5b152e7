package service

import (
	"context"
	"time"

	"github.com/opsdash/backend-go/internal/cache"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
)

// fakeComponentRepo serves components from an in-memory map.
type fakeComponentRepo struct {
	components map[int64]*domain.Component
}

func newFakeComponentRepo(components ...*domain.Component) *fakeComponentRepo {
	repo := &fakeComponentRepo{components: make(map[int64]*domain.Component)}
	for _, c := range components {
		repo.components[c.ID] = c
	}
	return repo
}

func (f *fakeComponentRepo) Create(_ context.Context, component *domain.Component) error {
	component.ID = int64(len(f.components) + 1)
	f.components[component.ID] = component
	return nil
}

func (f *fakeComponentRepo) Update(_ context.Context, component *domain.Component) error {
	if _, ok := f.components[component.ID]; !ok {
		return domain.NewNotFoundError("component", component.ID)
	}
	f.components[component.ID] = component
	return nil
}

func (f *fakeComponentRepo) GetByID(_ context.Context, id int64) (*domain.Component, error) {
	component, ok := f.components[id]
	if !ok {
		return nil, domain.NewNotFoundError("component", id)
	}
	return component, nil
}

func (f *fakeComponentRepo) GetBySKU(_ context.Context, sku string) (*domain.Component, error) {
	for _, c := range f.components {
		if c.SKU == sku {
			return c, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "component"}
}

func (f *fakeComponentRepo) List(_ context.Context, _ repository.ComponentFilter) ([]*domain.Component, error) {
	var out []*domain.Component
	for _, c := range f.components {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeComponentRepo) ListActive(_ context.Context) ([]*domain.Component, error) {
	var out []*domain.Component
	for _, c := range f.components {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComponentRepo) Deactivate(_ context.Context, id int64) error {
	component, ok := f.components[id]
	if !ok {
		return domain.NewNotFoundError("component", id)
	}
	component.IsActive = false
	return nil
}

// fakeStockRepo records adjustments and serves canned levels.
type fakeStockRepo struct {
	levels       map[int64]*domain.StockLevel
	transactions []*domain.StockTransaction
	adjustments  []repository.Adjustment
	adjustErr    error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{levels: make(map[int64]*domain.StockLevel)}
}

func (f *fakeStockRepo) GetByComponent(_ context.Context, componentID int64) (*domain.StockLevel, error) {
	level, ok := f.levels[componentID]
	if !ok {
		return nil, domain.NewNotFoundError("stock level for component", componentID)
	}
	return level, nil
}

func (f *fakeStockRepo) ListAll(_ context.Context) (map[int64]*domain.StockLevel, error) {
	return f.levels, nil
}

func (f *fakeStockRepo) Adjust(_ context.Context, adj repository.Adjustment) (*repository.AdjustmentResult, error) {
	if f.adjustErr != nil {
		return nil, f.adjustErr
	}
	f.adjustments = append(f.adjustments, adj)

	level, ok := f.levels[adj.ComponentID]
	if !ok {
		level = &domain.StockLevel{ComponentID: adj.ComponentID}
		f.levels[adj.ComponentID] = level
	}
	previous := level.OnHand
	if adj.Type == domain.TransactionCount {
		level.OnHand = adj.Quantity
	} else {
		level.OnHand += adj.Quantity
	}
	if level.OnHand < 0 {
		level.OnHand = previous
		return nil, &domain.NegativeStockError{
			ComponentID: adj.ComponentID,
			Current:     previous,
			Requested:   -adj.Quantity,
		}
	}
	return &repository.AdjustmentResult{
		ComponentID:    adj.ComponentID,
		PreviousOnHand: previous,
		NewOnHand:      level.OnHand,
		Delta:          level.OnHand - previous,
	}, nil
}

func (f *fakeStockRepo) ListTransactions(_ context.Context, componentID int64, _, _ int) ([]*domain.StockTransaction, error) {
	var out []*domain.StockTransaction
	for _, txn := range f.transactions {
		if txn.ComponentID == componentID {
			out = append(out, txn)
		}
	}
	return out, nil
}

// fakePORepo tracks the calls the service makes against it.
type fakePORepo struct {
	orders        map[int64]*domain.PurchaseOrder
	suppliers     []*domain.Supplier
	transitionErr error
	lastTarget    domain.POStatus
	lastReceipts  []repository.ReceiptLine
	deleted       []int64
}

func newFakePORepo(orders ...*domain.PurchaseOrder) *fakePORepo {
	repo := &fakePORepo{orders: make(map[int64]*domain.PurchaseOrder)}
	for _, po := range orders {
		repo.orders[po.ID] = po
	}
	return repo
}

func (f *fakePORepo) Create(_ context.Context, po *domain.PurchaseOrder) error {
	po.ID = int64(len(f.orders) + 1)
	po.PONumber = "PO-2026030001"
	po.RecalculateTotals()
	f.orders[po.ID] = po
	return nil
}

func (f *fakePORepo) GetByID(_ context.Context, id int64) (*domain.PurchaseOrder, error) {
	po, ok := f.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("purchase order", id)
	}
	return po, nil
}

func (f *fakePORepo) List(_ context.Context, _ repository.POFilter) ([]*domain.PurchaseOrder, int, error) {
	var out []*domain.PurchaseOrder
	for _, po := range f.orders {
		out = append(out, po)
	}
	return out, len(out), nil
}

func (f *fakePORepo) TransitionStatus(_ context.Context, id int64, target domain.POStatus) (*domain.PurchaseOrder, error) {
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	po, ok := f.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("purchase order", id)
	}
	if !po.Status.CanTransitionTo(target) {
		return nil, &domain.StateTransitionError{From: po.Status, To: target}
	}
	po.Status = target
	f.lastTarget = target
	return po, nil
}

func (f *fakePORepo) ReceiveItems(_ context.Context, id int64, receipts []repository.ReceiptLine) (*domain.PurchaseOrder, error) {
	po, ok := f.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("purchase order", id)
	}
	f.lastReceipts = receipts
	return po, nil
}

func (f *fakePORepo) Delete(_ context.Context, id int64) error {
	po, ok := f.orders[id]
	if !ok {
		return domain.NewNotFoundError("purchase order", id)
	}
	if !po.Status.AllowsDeletion() {
		return domain.NewValidationError("status", "cannot delete a %s purchase order", po.Status)
	}
	delete(f.orders, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePORepo) ListSuppliers(_ context.Context) ([]*domain.Supplier, error) {
	return f.suppliers, nil
}

// fakeOrderRepo serves canned order history.
type fakeOrderRepo struct {
	lines []domain.OrderLineItem
}

func (f *fakeOrderRepo) ListLineItems(_ context.Context, _, _ time.Time, _ *int64) ([]domain.OrderLineItem, error) {
	return f.lines, nil
}

// fakeBOMRepo serves canned reference data.
type fakeBOMRepo struct {
	entries  []domain.BOMEntry
	mappings []domain.SKUMapping
}

func (f *fakeBOMRepo) ListBOMEntries(_ context.Context) ([]domain.BOMEntry, error) {
	return f.entries, nil
}

func (f *fakeBOMRepo) ListSKUMappings(_ context.Context) ([]domain.SKUMapping, error) {
	return f.mappings, nil
}

// countingCache wraps the noop cache and counts invalidations.
type countingCache struct {
	cache.ForecastCache
	invalidations int
}

func newCountingCache() *countingCache {
	return &countingCache{ForecastCache: cache.NewNoopForecastCache()}
}

func (c *countingCache) InvalidateAll(_ context.Context) error {
	c.invalidations++
	return nil
}
