package trendsvc

import (
	"context"
	"fmt"
	"math"

	"github.com/darazboard/order-sync/internal/dal/interfaces/itrendrepo"
	"github.com/darazboard/order-sync/internal/dal/postgres"
	trendrepo "github.com/darazboard/order-sync/internal/dal/repositories/trend/postgres"
	"github.com/darazboard/order-sync/internal/service/models/trend"
)

// Movement speed thresholds in average units sold per day.
const (
	fastThreshold   = 5
	mediumThreshold = 2
)

// TrendService scores product movement over the synced order history.
type TrendService struct {
	trendRepo itrendrepo.ITrendRepository
}

// option is a function that configures the TrendService.
type option func(*TrendService)

// MustNewTrendService creates a new TrendService.
func MustNewTrendService(opts ...option) *TrendService {
	s := &TrendService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.trendRepo == nil {
		panic("trend service is missing a repository")
	}

	return s
}

// WithPostgresClient sets the Postgres-backed trend repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *TrendService) {
		s.trendRepo = trendrepo.NewPostgresTrendRepository(pgClient.Pool())
	}
}

// WithRepository overrides the trend repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo itrendrepo.ITrendRepository) option {
	return func(s *TrendService) {
		s.trendRepo = repo
	}
}

// GetProductTrend aggregates delivered-order movement per product and
// scores it.
func (s *TrendService) GetProductTrend(ctx context.Context) ([]trend.ProductTrend, error) {
	aggregates, err := s.trendRepo.ProductAggregates(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]trend.ProductTrend, 0, len(aggregates))
	for _, agg := range aggregates {
		result = append(result, Score(agg))
	}

	return result, nil
}

// Score derives the movement indicators of one product aggregate. The
// prior-30-day quantity is the 90-day total minus the last 30 days;
// growth is measured against it when it is positive.
func Score(agg trend.ProductAggregate) trend.ProductTrend {
	previous30 := agg.Last90DaysQty - agg.Last30DaysQty

	growthRate := 0.0
	if previous30 > 0 {
		growthRate = float64(agg.Last30DaysQty-previous30) / float64(previous30) * 100
	}

	avgDailySales := float64(agg.Last30DaysQty) / 30
	predicted := int64(math.Ceil(avgDailySales * 30))

	speed := "Slow"
	switch {
	case avgDailySales >= fastThreshold:
		speed = "Fast"
	case avgDailySales >= mediumThreshold:
		speed = "Medium"
	}

	return trend.ProductTrend{
		ProductName:        agg.ProductName,
		SKU:                agg.SKU,
		ProductImage:       agg.ProductImage,
		Last30DaysOrders:   agg.Last30DaysOrders,
		Last90DaysOrders:   agg.Last90DaysOrders,
		Last30DaysQty:      agg.Last30DaysQty,
		Last90DaysQty:      agg.Last90DaysQty,
		TotalQuantitySold:  agg.TotalQuantitySold,
		TotalSalesAmount:   agg.TotalSalesAmount,
		GrowthRate:         fmt.Sprintf("%.2f", growthRate),
		MovementSpeed:      speed,
		PredictedNext30Day: predicted,
	}
}
