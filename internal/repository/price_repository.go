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

// PriceRepository handles read queries over a price shaped collection.
// It backs both the prices and the indices collections.
type PriceRepository struct {
	collection   *mongo.Collection
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(collection *mongo.Collection, queryTimeout time.Duration, logger *zap.Logger) *PriceRepository {
	return &PriceRepository{
		collection:   collection,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// List returns every document in the collection
func (r *PriceRepository) List(ctx context.Context) ([]model.PriceItem, error) {
	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to list prices",
			zap.String("collection", r.collection.Name()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list %s: %w", r.collection.Name(), err)
	}

	items := []model.PriceItem{}
	if err := cursor.All(ctx, &items); err != nil {
		r.logger.Error("Failed to decode prices", zap.Error(err))
		return nil, fmt.Errorf("failed to decode %s: %w", r.collection.Name(), err)
	}

	return items, nil
}

// GetByTicker returns the document for the upper-cased ticker, or nil
func (r *PriceRepository) GetByTicker(ctx context.Context, ticker string) (*model.PriceItem, error) {
	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	var item model.PriceItem
	err := r.collection.FindOne(ctx, bson.M{fieldPriceCode: NormalizeTicker(ticker)}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get price by ticker", zap.Error(err), zap.String("ticker", ticker))
		return nil, fmt.Errorf("failed to get price %s: %w", ticker, err)
	}

	return &item, nil
}
