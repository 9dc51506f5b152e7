// internal/service/forecast_service.go
package service

import (
	"context"
	"sort"
	"time"

	"github.com/opsdash/backend-go/internal/cache"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/forecast"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/opsdash/backend-go/internal/sku"
	"github.com/rs/zerolog/log"
)

type ForecastService struct {
	components      repository.ComponentRepository
	stock           repository.StockRepository
	orders          repository.OrderHistoryRepository
	bom             repository.BOMRepository
	cache           cache.ForecastCache
	windowDays      int
	targetCoverDays int
}

func NewForecastService(
	components repository.ComponentRepository,
	stock repository.StockRepository,
	orders repository.OrderHistoryRepository,
	bom repository.BOMRepository,
	forecastCache cache.ForecastCache,
	windowDays, targetCoverDays int,
) *ForecastService {
	if forecastCache == nil {
		forecastCache = cache.NewNoopForecastCache()
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	if targetCoverDays <= 0 {
		targetCoverDays = forecast.DefaultTargetCoverDays
	}
	return &ForecastService{
		components:      components,
		stock:           stock,
		orders:          orders,
		bom:             bom,
		cache:           forecastCache,
		windowDays:      windowDays,
		targetCoverDays: targetCoverDays,
	}
}

// Evaluate runs a forecast sweep across all active components: velocity
// from the trailing order window, projection from current stock levels.
// Rows are sorted ascending by days remaining with unknown runway last.
func (s *ForecastService) Evaluate(ctx context.Context, brandID *int64) ([]domain.ComponentForecast, error) {
	key := cache.SweepKey{BrandID: brandID, WindowDays: s.windowDays}
	if rows, ok, err := s.cache.GetSweep(ctx, key); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast cache get failed")
	}

	now := time.Now()
	velocities, err := s.computeVelocities(ctx, now, brandID)
	if err != nil {
		return nil, err
	}

	components, err := s.components.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := s.stock.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ComponentForecast, 0, len(components))
	for _, component := range components {
		level := levels[component.ID]
		if level == nil {
			level = &domain.StockLevel{ComponentID: component.ID}
		}
		velocity := velocities[component.ID]

		projection := forecast.Forecast(forecast.Input{
			Available:       level.Available(),
			Velocity:        velocity,
			LeadTimeDays:    component.LeadTimeDays,
			SafetyStockDays: component.SafetyDays,
		}, now)

		rows = append(rows, domain.ComponentForecast{
			ComponentID:   component.ID,
			SKU:           component.SKU,
			Name:          component.Name,
			OnHand:        level.OnHand,
			Reserved:      level.Reserved,
			OnOrder:       level.OnOrder,
			Available:     level.Available(),
			Velocity:      velocity,
			LeadTimeDays:  component.LeadTimeDays,
			SafetyDays:    component.SafetyDays,
			DaysRemaining: projection.DaysRemaining,
			ReorderPoint:  projection.ReorderPoint,
			ReorderDate:   projection.ReorderDate,
			Status:        string(projection.Status),
			StatusReason:  projection.StatusReason,
			SuggestedOrderQuantity: forecast.SuggestedOrderQuantity(
				velocity, level.Available(), level.OnOrder,
				component.MinimumOrderQty, s.targetCoverDays,
			),
		})
	}

	sortByUrgency(rows)

	if err := s.cache.SetSweep(ctx, key, rows); err != nil {
		log.Warn().Err(err).Msg("forecast cache set failed")
	}

	return rows, nil
}

// LowStock groups the sweep's at-risk components by severity for alerting
// and the dashboard.
func (s *ForecastService) LowStock(ctx context.Context, brandID *int64) (*domain.LowStockReport, error) {
	key := cache.SweepKey{BrandID: brandID, WindowDays: s.windowDays}
	if report, ok, err := s.cache.GetLowStock(ctx, key); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast cache get failed")
	}

	rows, err := s.Evaluate(ctx, brandID)
	if err != nil {
		return nil, err
	}

	report := &domain.LowStockReport{GeneratedAt: time.Now()}
	for _, row := range rows {
		switch forecast.StockStatus(row.Status) {
		case forecast.StatusOutOfStock:
			report.OutOfStock = append(report.OutOfStock, row)
		case forecast.StatusCritical:
			report.Critical = append(report.Critical, row)
		case forecast.StatusWarning:
			report.Warning = append(report.Warning, row)
		}
	}

	if err := s.cache.SetLowStock(ctx, key, report); err != nil {
		log.Warn().Err(err).Msg("forecast cache set failed")
	}

	return report, nil
}

func (s *ForecastService) computeVelocities(ctx context.Context, now time.Time, brandID *int64) (map[int64]float64, error) {
	from := now.AddDate(0, 0, -s.windowDays)
	lines, err := s.orders.ListLineItems(ctx, from, now, brandID)
	if err != nil {
		return nil, err
	}

	entries, err := s.bom.ListBOMEntries(ctx)
	if err != nil {
		return nil, err
	}
	mappings, err := s.bom.ListSKUMappings(ctx)
	if err != nil {
		return nil, err
	}

	return forecast.ComputeVelocity(lines, forecast.NewBOMIndex(entries), sku.NewMappingTable(mappings), s.windowDays)
}

// sortByUrgency orders rows ascending by days remaining. Components without
// a sales signal sort last; ties break on SKU for stable output.
func sortByUrgency(rows []domain.ComponentForecast) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].DaysRemaining, rows[j].DaysRemaining
		switch {
		case a == nil && b == nil:
			return rows[i].SKU < rows[j].SKU
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		}
		return rows[i].SKU < rows[j].SKU
	})
}
