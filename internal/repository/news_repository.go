package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourorg/kap-news/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// NewsRepository handles read queries over the news collection
type NewsRepository struct {
	collection   *mongo.Collection
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(collection *mongo.Collection, queryTimeout time.Duration, logger *zap.Logger) *NewsRepository {
	return &NewsRepository{
		collection:   collection,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// List returns one page of news sorted by publication date descending
func (r *NewsRepository) List(ctx context.Context, page, pageSize int) ([]model.NewsItem, error) {
	return r.find(ctx, "List", bson.M{}, pageOptions(page, pageSize))
}

// ListByTicker returns one page of news related to the ticker
func (r *NewsRepository) ListByTicker(ctx context.Context, ticker string, page, pageSize int) ([]model.NewsItem, error) {
	return r.find(ctx, "ListByTicker", tickerFilter(ticker), pageOptions(page, pageSize))
}

// ListByDate returns all news published on the date, latest time first
func (r *NewsRepository) ListByDate(ctx context.Context, date string) ([]model.NewsItem, error) {
	return r.find(ctx, "ListByDate", dateFilter(date), byTimeDesc())
}

// ListByDateRange returns all news with from <= date <= to, latest date first
func (r *NewsRepository) ListByDateRange(ctx context.Context, from, to string) ([]model.NewsItem, error) {
	if from > to {
		return []model.NewsItem{}, nil
	}
	return r.find(ctx, "ListByDateRange", dateRangeFilter(from, to), byDateDesc())
}

// ListLatest returns the most recent count news items
func (r *NewsRepository) ListLatest(ctx context.Context, count int) ([]model.NewsItem, error) {
	return r.find(ctx, "ListLatest", bson.M{}, latestOptions(count))
}

// Count returns the total number of news documents
func (r *NewsRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

// CountByTicker returns the number of news documents related to the ticker
func (r *NewsRepository) CountByTicker(ctx context.Context, ticker string) (int64, error) {
	return r.count(ctx, tickerFilter(ticker))
}

// GetByID returns a single news item, or nil when it does not exist
func (r *NewsRepository) GetByID(ctx context.Context, id string) (*model.NewsItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not a valid ObjectId, nothing can match
		return nil, nil
	}

	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	var item model.NewsItem
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get news by ID", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get news %s: %w", id, err)
	}

	return &item, nil
}

func (r *NewsRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]model.NewsItem, error) {
	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query news", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("news %s: %w", op, err)
	}

	items := []model.NewsItem{}
	if err := cursor.All(ctx, &items); err != nil {
		r.logger.Error("Failed to decode news", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("news %s decode: %w", op, err)
	}

	return items, nil
}

func (r *NewsRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := queryContext(ctx, r.queryTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count news", zap.Error(err))
		return 0, fmt.Errorf("failed to count news: %w", err)
	}
	return n, nil
}
