package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/model"

	"go.uber.org/zap"
)

// NewsPage is one page of news with its paging metadata
type NewsPage struct {
	Items    []model.NewsItem
	Total    int64
	Page     int
	PageSize int
	Ticker   string
}

// NewsService handles news queries and decorates every returned item
type NewsService struct {
	repo       NewsStore
	images     ImageResolver
	pagination config.PaginationConfig
	location   *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewNewsService creates a new news service. "Today" is evaluated in location.
func NewNewsService(repo NewsStore, images ImageResolver, pagination config.PaginationConfig, location *time.Location, logger *zap.Logger) *NewsService {
	return &NewsService{
		repo:       repo,
		images:     images,
		pagination: pagination,
		location:   location,
		now:        time.Now,
		logger:     logger,
	}
}

// ClampPage normalizes page and pageSize: page < 1 becomes 1, pageSize < 1
// becomes the default and pageSize above the maximum is capped
func (s *NewsService) ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.pagination.DefaultPageSize
	}
	if pageSize > s.pagination.MaxPageSize {
		pageSize = s.pagination.MaxPageSize
	}
	return page, pageSize
}

// ClampCount normalizes the latest-news count
func (s *NewsService) ClampCount(count int) int {
	if count < 1 {
		return s.pagination.DefaultLatest
	}
	if count > s.pagination.MaxLatest {
		return s.pagination.MaxLatest
	}
	return count
}

// List returns one page of news and the total count
func (s *NewsService) List(ctx context.Context, page, pageSize int) (*NewsPage, error) {
	page, pageSize = s.ClampPage(page, pageSize)

	items, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count news: %w", err)
	}

	return &NewsPage{
		Items:    s.decorate(items),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListByTicker returns one page of news related to a ticker
func (s *NewsService) ListByTicker(ctx context.Context, ticker string, page, pageSize int) (*NewsPage, error) {
	page, pageSize = s.ClampPage(page, pageSize)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	items, err := s.repo.ListByTicker(ctx, ticker, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list news for %s: %w", ticker, err)
	}
	total, err := s.repo.CountByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to count news for %s: %w", ticker, err)
	}

	return &NewsPage{
		Items:    s.decorate(items),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Ticker:   ticker,
	}, nil
}

// ListLatest returns the most recent news
func (s *NewsService) ListLatest(ctx context.Context, count int) ([]model.NewsItem, error) {
	items, err := s.repo.ListLatest(ctx, s.ClampCount(count))
	if err != nil {
		return nil, fmt.Errorf("failed to list latest news: %w", err)
	}
	return s.decorate(items), nil
}

// ListByDate returns every news item published on date (YYYY-MM-DD)
func (s *NewsService) ListByDate(ctx context.Context, date string) ([]model.NewsItem, error) {
	items, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list news for %s: %w", date, err)
	}
	return s.decorate(items), nil
}

// ListToday returns today's news in the configured market timezone
func (s *NewsService) ListToday(ctx context.Context) ([]model.NewsItem, error) {
	return s.ListByDate(ctx, s.Today())
}

// Today returns the current date in the market timezone
func (s *NewsService) Today() string {
	return s.now().In(s.location).Format("2006-01-02")
}

// ListByDateRange returns news with from <= date <= to
func (s *NewsService) ListByDateRange(ctx context.Context, from, to string) ([]model.NewsItem, error) {
	if from > to {
		return []model.NewsItem{}, nil
	}
	items, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list news between %s and %s: %w", from, to, err)
	}
	return s.decorate(items), nil
}

// Count returns the total, or the per-ticker count when ticker is set
func (s *NewsService) Count(ctx context.Context, ticker string) (int64, error) {
	var (
		n   int64
		err error
	)
	if ticker == "" {
		n, err = s.repo.Count(ctx)
	} else {
		n, err = s.repo.CountByTicker(ctx, ticker)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count news: %w", err)
	}
	return n, nil
}

// GetByID returns one news item, or nil when not found
func (s *NewsService) GetByID(ctx context.Context, id string) (*model.NewsItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get news %s: %w", id, err)
	}
	if item == nil {
		return nil, nil
	}
	s.decorateOne(item)
	return item, nil
}

func (s *NewsService) decorate(items []model.NewsItem) []model.NewsItem {
	if items == nil {
		return []model.NewsItem{}
	}
	for i := range items {
		s.decorateOne(&items[i])
	}
	return items
}

func (s *NewsService) decorateOne(item *model.NewsItem) {
	item.ImageURL = s.images.Resolve(item)
	item.IsImportant = item.Important()
}
