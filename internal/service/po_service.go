// internal/service/po_service.go
package service

import (
	"context"
	"time"

	"github.com/opsdash/backend-go/internal/cache"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CreatePOItemInput is one requested purchase order line.
type CreatePOItemInput struct {
	ComponentID int64           `json:"component_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreatePOInput is the input for creating a draft purchase order.
type CreatePOInput struct {
	SupplierID      int64               `json:"supplier_id"`
	BrandID         *int64              `json:"brand_id"`
	ExpectedDate    *time.Time          `json:"expected_date"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	Tax             decimal.Decimal     `json:"tax"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           string              `json:"notes"`
	Items           []CreatePOItemInput `json:"items"`
}

type POService struct {
	repo       repository.PORepository
	components repository.ComponentRepository
	cache      cache.ForecastCache
}

func NewPOService(repo repository.PORepository, components repository.ComponentRepository, forecastCache cache.ForecastCache) *POService {
	if forecastCache == nil {
		forecastCache = cache.NewNoopForecastCache()
	}
	return &POService{repo: repo, components: components, cache: forecastCache}
}

// Create validates the input and persists a new draft purchase order with
// a freshly allocated PO number.
func (s *POService) Create(ctx context.Context, input CreatePOInput) (*domain.PurchaseOrder, error) {
	if input.SupplierID <= 0 {
		return nil, domain.NewValidationError("supplier_id", "is required")
	}
	if len(input.Items) == 0 {
		return nil, domain.NewValidationError("items", "at least one line item is required")
	}
	if input.ShippingCost.IsNegative() {
		return nil, domain.NewValidationError("shipping_cost", "cannot be negative")
	}
	if input.Tax.IsNegative() {
		return nil, domain.NewValidationError("tax", "cannot be negative")
	}

	po := &domain.PurchaseOrder{
		SupplierID:      input.SupplierID,
		BrandID:         input.BrandID,
		Status:          domain.StatusDraft,
		ExpectedDate:    input.ExpectedDate,
		ShippingCost:    input.ShippingCost,
		Tax:             input.Tax,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
	}

	for _, item := range input.Items {
		if item.ComponentID <= 0 {
			return nil, domain.NewValidationError("items.component_id", "is required")
		}
		if item.Quantity <= 0 {
			return nil, domain.NewValidationError("items.quantity", "must be positive, got %d", item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, domain.NewValidationError("items.unit_price", "cannot be negative")
		}
		if _, err := s.components.GetByID(ctx, item.ComponentID); err != nil {
			return nil, err
		}

		po.Items = append(po.Items, domain.PurchaseOrderItem{
			ComponentID:     item.ComponentID,
			QuantityOrdered: item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	if err := s.repo.Create(ctx, po); err != nil {
		return nil, err
	}

	log.Info().
		Str("po_number", po.PONumber).
		Int64("supplier_id", po.SupplierID).
		Int("items", len(po.Items)).
		Msg("purchase order created")

	return po, nil
}

// Get returns a purchase order with its line items.
func (s *POService) Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns purchase orders matching the filter plus the total count.
func (s *POService) List(ctx context.Context, filter repository.POFilter) ([]*domain.PurchaseOrder, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, domain.NewValidationError("status", "unknown status %q", filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves the order to the target status. The repository applies
// the transition and its on_order side effects atomically.
func (s *POService) UpdateStatus(ctx context.Context, id int64, label string) (*domain.PurchaseOrder, error) {
	target, ok := domain.ParsePOStatus(label)
	if !ok {
		return nil, domain.NewValidationError("status", "unknown status %q", label)
	}

	po, err := s.repo.TransitionStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("po_number", po.PONumber).
		Str("status", string(po.Status)).
		Msg("purchase order status updated")

	if target == domain.StatusSent || target == domain.StatusConfirmed || target == domain.StatusCancelled {
		s.invalidateForecasts(ctx)
	}

	return po, nil
}

// Receive applies a receiving batch against the order's line items.
func (s *POService) Receive(ctx context.Context, id int64, receipts []repository.ReceiptLine) (*domain.PurchaseOrder, error) {
	if len(receipts) == 0 {
		return nil, domain.NewValidationError("items", "at least one receipt line is required")
	}
	for _, receipt := range receipts {
		if receipt.ItemID <= 0 {
			return nil, domain.NewValidationError("items.item_id", "is required")
		}
		if receipt.Quantity <= 0 {
			return nil, domain.NewValidationError("items.quantity", "must be positive, got %d", receipt.Quantity)
		}
	}

	po, err := s.repo.ReceiveItems(ctx, id, receipts)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("po_number", po.PONumber).
		Str("status", string(po.Status)).
		Int("lines", len(receipts)).
		Msg("purchase order items received")

	s.invalidateForecasts(ctx)

	return po, nil
}

// Delete removes a draft or cancelled purchase order and its items.
func (s *POService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("po_id", id).Msg("purchase order deleted")
	return nil
}

// ListSuppliers returns all suppliers for admin dropdowns.
func (s *POService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *POService) invalidateForecasts(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast cache invalidation failed")
	}
}
