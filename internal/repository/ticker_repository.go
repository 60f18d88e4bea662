package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourorg/kap-news/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TickerRepository reads the ticker to company name reference collection
type TickerRepository struct {
	collection   *mongo.Collection
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewTickerRepository creates a new ticker repository
func NewTickerRepository(collection *mongo.Collection, queryTimeout time.Duration, logger *zap.Logger) *TickerRepository {
	return &TickerRepository{
		collection:   collection,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// GetBySymbol returns the ticker entry for the symbol, or nil
func (r *TickerRepository) GetBySymbol(ctx context.Context, symbol string) (*model.Ticker, error) {
	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	var ticker model.Ticker
	err := r.collection.FindOne(ctx, bson.M{"_id": NormalizeTicker(symbol)}).Decode(&ticker)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get ticker", zap.Error(err), zap.String("symbol", symbol))
		return nil, fmt.Errorf("failed to get ticker %s: %w", symbol, err)
	}

	return &ticker, nil
}

// List returns every ticker entry
func (r *TickerRepository) List(ctx context.Context) ([]model.Ticker, error) {
	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to list tickers", zap.Error(err))
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	tickers := []model.Ticker{}
	if err := cursor.All(ctx, &tickers); err != nil {
		return nil, fmt.Errorf("failed to decode tickers: %w", err)
	}
	return tickers, nil
}
