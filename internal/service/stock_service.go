// internal/service/stock_service.go
package service

import (
	"context"
	"errors"

	"github.com/opsdash/backend-go/internal/cache"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// AdjustmentType is the caller-facing adjustment operation
type AdjustmentType string

const (
	AdjustCount  AdjustmentType = "count"
	AdjustAdd    AdjustmentType = "add"
	AdjustRemove AdjustmentType = "remove"
)

// AdjustRequest is the input for a manual stock adjustment.
type AdjustRequest struct {
	ComponentID int64          `json:"component_id"`
	Type        AdjustmentType `json:"type"`
	Quantity    int            `json:"quantity"`
	Notes       string         `json:"notes"`
}

// StockView bundles a component's stock level with its recent ledger.
type StockView struct {
	ComponentID  int64                      `json:"component_id"`
	StockLevel   *domain.StockLevel         `json:"stock_level"`
	Transactions []*domain.StockTransaction `json:"transactions"`
}

type StockService struct {
	stock      repository.StockRepository
	components repository.ComponentRepository
	cache      cache.ForecastCache
}

func NewStockService(stock repository.StockRepository, components repository.ComponentRepository, forecastCache cache.ForecastCache) *StockService {
	if forecastCache == nil {
		forecastCache = cache.NewNoopForecastCache()
	}
	return &StockService{stock: stock, components: components, cache: forecastCache}
}

// Adjust validates and applies a manual stock adjustment. The repository
// performs the mutation and the ledger append in one transaction; nothing
// is written when validation fails.
func (s *StockService) Adjust(ctx context.Context, req AdjustRequest) (*repository.AdjustmentResult, error) {
	if req.ComponentID <= 0 {
		return nil, domain.NewValidationError("component_id", "is required")
	}
	if _, err := s.components.GetByID(ctx, req.ComponentID); err != nil {
		return nil, err
	}

	adj := repository.Adjustment{
		ComponentID: req.ComponentID,
		Notes:       req.Notes,
	}

	switch req.Type {
	case AdjustCount:
		// A physical recount must be justified.
		if req.Notes == "" {
			return nil, domain.NewValidationError("notes", "notes are required for a count adjustment")
		}
		if req.Quantity < 0 {
			return nil, domain.NewValidationError("quantity", "counted quantity cannot be negative, got %d", req.Quantity)
		}
		adj.Type = domain.TransactionCount
		adj.Quantity = req.Quantity
	case AdjustAdd:
		if req.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "must be positive, got %d", req.Quantity)
		}
		adj.Type = domain.TransactionAdjust
		adj.Quantity = req.Quantity
	case AdjustRemove:
		if req.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "must be positive, got %d", req.Quantity)
		}
		adj.Type = domain.TransactionAdjust
		adj.Quantity = -req.Quantity
	default:
		return nil, domain.NewValidationError("type", "unknown adjustment type %q", req.Type)
	}

	result, err := s.stock.Adjust(ctx, adj)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("component_id", req.ComponentID).
		Str("type", string(req.Type)).
		Int("delta", result.Delta).
		Int("on_hand", result.NewOnHand).
		Msg("stock adjusted")

	s.invalidateForecasts(ctx)

	return result, nil
}

// GetStock returns the stock level and recent ledger for a component. A
// component without movements yet reports a zero-baseline level.
func (s *StockService) GetStock(ctx context.Context, componentID int64) (*StockView, error) {
	if _, err := s.components.GetByID(ctx, componentID); err != nil {
		return nil, err
	}

	level, err := s.stock.GetByComponent(ctx, componentID)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		level = &domain.StockLevel{ComponentID: componentID}
	}

	transactions, err := s.stock.ListTransactions(ctx, componentID, 50, 0)
	if err != nil {
		return nil, err
	}

	return &StockView{
		ComponentID:  componentID,
		StockLevel:   level,
		Transactions: transactions,
	}, nil
}

// History lists ledger entries for a component, newest first.
func (s *StockService) History(ctx context.Context, componentID int64, limit, offset int) ([]*domain.StockTransaction, error) {
	if _, err := s.components.GetByID(ctx, componentID); err != nil {
		return nil, err
	}
	return s.stock.ListTransactions(ctx, componentID, limit, offset)
}

// invalidateForecasts drops cached forecast sweeps after a stock mutation.
// Cache failures are logged, never propagated: the mutation already
// committed.
func (s *StockService) invalidateForecasts(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast cache invalidation failed")
	}
}
