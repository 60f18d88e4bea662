package service

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/yourorg/kap-news/internal/model"

	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

func istanbul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	return loc
}

// fakeNewsStore records the arguments it was called with
type fakeNewsStore struct {
	items []model.NewsItem
	total int64
	err   error

	calls    []string
	page     int
	pageSize int
	ticker   string
	date     string
	count    int
}

func (f *fakeNewsStore) copyItems() []model.NewsItem {
	if f.items == nil {
		return nil
	}
	out := make([]model.NewsItem, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeNewsStore) List(_ context.Context, page, pageSize int) ([]model.NewsItem, error) {
	f.calls = append(f.calls, "List")
	f.page, f.pageSize = page, pageSize
	return f.copyItems(), f.err
}

func (f *fakeNewsStore) ListByTicker(_ context.Context, ticker string, page, pageSize int) ([]model.NewsItem, error) {
	f.calls = append(f.calls, "ListByTicker")
	f.ticker, f.page, f.pageSize = ticker, page, pageSize
	return f.copyItems(), f.err
}

func (f *fakeNewsStore) ListByDate(_ context.Context, date string) ([]model.NewsItem, error) {
	f.calls = append(f.calls, "ListByDate")
	f.date = date
	return f.copyItems(), f.err
}

func (f *fakeNewsStore) ListByDateRange(_ context.Context, from, to string) ([]model.NewsItem, error) {
	f.calls = append(f.calls, "ListByDateRange")
	return f.copyItems(), f.err
}

func (f *fakeNewsStore) ListLatest(_ context.Context, count int) ([]model.NewsItem, error) {
	f.calls = append(f.calls, "ListLatest")
	f.count = count
	return f.copyItems(), f.err
}

func (f *fakeNewsStore) Count(context.Context) (int64, error) {
	f.calls = append(f.calls, "Count")
	return f.total, f.err
}

func (f *fakeNewsStore) CountByTicker(_ context.Context, ticker string) (int64, error) {
	f.calls = append(f.calls, "CountByTicker")
	f.ticker = ticker
	return f.total, f.err
}

func (f *fakeNewsStore) GetByID(_ context.Context, id string) (*model.NewsItem, error) {
	f.calls = append(f.calls, "GetByID")
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID.Hex() == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

type fakePriceStore struct {
	items []model.PriceItem
	err   error
}

func (f *fakePriceStore) List(context.Context) ([]model.PriceItem, error) {
	return f.items, f.err
}

func (f *fakePriceStore) GetByTicker(_ context.Context, ticker string) (*model.PriceItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].Ticker == ticker {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

type fakeTickerStore struct {
	tickers map[string]string
	err     error
}

func (f *fakeTickerStore) GetBySymbol(_ context.Context, symbol string) (*model.Ticker, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.tickers[symbol]
	if !ok {
		return nil, nil
	}
	return &model.Ticker{Symbol: symbol, Name: name}, nil
}

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) FetchChart(context.Context, string, string) ([]byte, error) {
	return f.body, f.err
}

// stubResolver returns a fixed URL per category
type stubResolver struct{}

func (stubResolver) Resolve(item *model.NewsItem) string {
	return "/img/" + item.Category
}
