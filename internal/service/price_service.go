package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/kap-news/internal/model"

	"go.uber.org/zap"
)

// PriceService serves stock and index price snapshots
type PriceService struct {
	prices  PriceStore
	indices PriceStore
	logger  *zap.Logger
}

// NewPriceService creates a new price service
func NewPriceService(prices, indices PriceStore, logger *zap.Logger) *PriceService {
	return &PriceService{
		prices:  prices,
		indices: indices,
		logger:  logger,
	}
}

// List returns every stock price snapshot
func (s *PriceService) List(ctx context.Context) ([]model.PriceItem, error) {
	items, err := s.prices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	return items, nil
}

// GetByTicker returns one price snapshot, or nil when not found
func (s *PriceService) GetByTicker(ctx context.Context, ticker string) (*model.PriceItem, error) {
	item, err := s.prices.GetByTicker(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
	if err != nil {
		return nil, fmt.Errorf("failed to get price for %s: %w", ticker, err)
	}
	return item, nil
}

// Summary counts rising, falling and flat tickers by their daily change.
// A missing or non-numeric change counts as neutral.
func (s *PriceService) Summary(ctx context.Context) (*model.MarketSummary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(items), nil
}

// Summarize computes a market summary over price snapshots
func Summarize(items []model.PriceItem) *model.MarketSummary {
	summary := &model.MarketSummary{Total: len(items)}
	for i := range items {
		change, ok := items[i].Float(model.FieldDailyChange)
		switch {
		case ok && change > 0:
			summary.Rising++
		case ok && change < 0:
			summary.Falling++
		default:
			summary.Neutral++
		}
	}
	return summary
}

// ListIndices returns every market index snapshot
func (s *PriceService) ListIndices(ctx context.Context) ([]model.PriceItem, error) {
	items, err := s.indices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indices: %w", err)
	}
	return items, nil
}

// GetIndex returns one index snapshot, or nil when not found
func (s *PriceService) GetIndex(ctx context.Context, code string) (*model.PriceItem, error) {
	item, err := s.indices.GetByTicker(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to get index %s: %w", code, err)
	}
	return item, nil
}
