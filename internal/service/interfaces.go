package service

import (
	"context"

	"github.com/yourorg/kap-news/internal/assets"
	"github.com/yourorg/kap-news/internal/model"
)

// NewsStore is the read side of the news collection
type NewsStore interface {
	List(ctx context.Context, page, pageSize int) ([]model.NewsItem, error)
	ListByTicker(ctx context.Context, ticker string, page, pageSize int) ([]model.NewsItem, error)
	ListByDate(ctx context.Context, date string) ([]model.NewsItem, error)
	ListByDateRange(ctx context.Context, from, to string) ([]model.NewsItem, error)
	ListLatest(ctx context.Context, count int) ([]model.NewsItem, error)
	Count(ctx context.Context) (int64, error)
	CountByTicker(ctx context.Context, ticker string) (int64, error)
	GetByID(ctx context.Context, id string) (*model.NewsItem, error)
}

// PriceStore is the read side of a price snapshot collection
type PriceStore interface {
	List(ctx context.Context) ([]model.PriceItem, error)
	GetByTicker(ctx context.Context, ticker string) (*model.PriceItem, error)
}

// TickerStore resolves company names
type TickerStore interface {
	GetBySymbol(ctx context.Context, symbol string) (*model.Ticker, error)
}

// ChartFetcher returns the raw upstream chart payload
type ChartFetcher interface {
	FetchChart(ctx context.Context, symbol, timeRange string) ([]byte, error)
}

// ImageResolver picks the display image of a news item
type ImageResolver interface {
	Resolve(item *model.NewsItem) string
}

// FileReader reads asset files
type FileReader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// AssetIndex provides the active asset index
type AssetIndex interface {
	Current() *assets.Index
}
