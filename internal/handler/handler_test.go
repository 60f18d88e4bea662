package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/yourorg/kap-news/internal/assets"
	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/model"
	"github.com/yourorg/kap-news/internal/proxy"
	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/storage"
	"github.com/yourorg/kap-news/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errDown = errors.New("mongo down")

type newsStore struct {
	items []model.NewsItem
	err   error
}

func (s *newsStore) result() ([]model.NewsItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.NewsItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *newsStore) List(context.Context, int, int) ([]model.NewsItem, error) { return s.result() }
func (s *newsStore) ListByTicker(context.Context, string, int, int) ([]model.NewsItem, error) {
	return s.result()
}
func (s *newsStore) ListByDate(context.Context, string) ([]model.NewsItem, error) { return s.result() }
func (s *newsStore) ListByDateRange(context.Context, string, string) ([]model.NewsItem, error) {
	return s.result()
}
func (s *newsStore) ListLatest(context.Context, int) ([]model.NewsItem, error) { return s.result() }
func (s *newsStore) Count(context.Context) (int64, error) { return int64(len(s.items)), s.err }
func (s *newsStore) CountByTicker(context.Context, string) (int64, error) {
	return int64(len(s.items)), s.err
}
func (s *newsStore) GetByID(_ context.Context, id string) (*model.NewsItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.items {
		if s.items[i].ID.Hex() == id {
			item := s.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

type priceStore struct {
	items []model.PriceItem
	err   error
}

func (s *priceStore) List(context.Context) ([]model.PriceItem, error) { return s.items, s.err }
func (s *priceStore) GetByTicker(_ context.Context, ticker string) (*model.PriceItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.items {
		if s.items[i].Ticker == ticker {
			return &s.items[i], nil
		}
	}
	return nil, nil
}

type tickerStore struct{}

func (tickerStore) GetBySymbol(_ context.Context, symbol string) (*model.Ticker, error) {
	if symbol == "ASELS" {
		return &model.Ticker{Symbol: symbol, Name: "ASELSAN"}, nil
	}
	return nil, nil
}

type chartFetcher struct {
	body string
	err  error
}

func (f *chartFetcher) FetchChart(context.Context, string, string) ([]byte, error) {
	return []byte(f.body), f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.AdminEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e model.AdminEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	router    *gin.Engine
	news      *newsStore
	prices    *priceStore
	chart     *chartFetcher
	publisher *recordingPublisher
	upstream  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	f := &fixture{
		news:      &newsStore{},
		prices:    &priceStore{},
		chart:     &chartFetcher{},
		publisher: &recordingPublisher{},
	}

	f.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"path":%q,"method":%q}`, r.URL.Path, r.Method)
	}))
	t.Cleanup(f.upstream.Close)

	assetsCfg := config.AssetsConfig{
		CustomImagesDir:  "news_images",
		BannersDir:       "banners",
		FinancialsDir:    "financials",
		CustomImagesURL:  "/news_images",
		BannerBaseURL:    "/banners",
		DefaultBanner:    "diğer.jpg",
		OtherCategoryDir: "diğer",
	}
	local := storage.NewLocalStorage(t.TempDir())
	assetStore := assets.NewStore(assets.NewBuilder(local, assetsCfg, map[string]string{"spk": "spk"}, logger), logger)
	resolver := assets.NewImageResolver(assetStore, assetsCfg, map[string]string{"spk": "spk"})

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	authService := service.NewAuthService(config.AdminConfig{
		Username:     "admin@kaphaber.com",
		PasswordHash: string(hash),
		JWTSecret:    "handler-test-secret-123",
		TokenTTL:     time.Hour,
	}, logger)

	pm, err := proxy.NewServiceProxy(f.upstream.URL, time.Second, logger)
	require.NoError(t, err)

	pagination := config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100, DefaultLatest: 10, MaxLatest: 500}
	newsService := service.NewNewsService(f.news, resolver, pagination, loc, logger)
	priceService := service.NewPriceService(f.prices, &priceStore{}, logger)
	chartService := service.NewChartService(f.chart, loc, logger)
	companyService := service.NewCompanyService(tickerStore{}, assetStore, local, "financials", logger)
	sitemapService := service.NewSitemapService(f.news, f.prices, config.SitemapConfig{BaseURL: "https://kaphaber.com", LatestNews: 500}, logger)

	f.router = SetupRouter(Handlers{
		News:    NewNewsHandler(newsService, logger),
		Price:   NewPriceHandler(priceService, logger),
		Chart:   NewChartHandler(chartService, logger),
		Company: NewCompanyHandler(companyService, logger),
		Sitemap: NewSitemapHandler(sitemapService, logger),
		Admin:   NewAdminHandler(authService, pm, assetStore, f.publisher, logger),
		Stream:  NewStreamHandler(stream.NewHub(f.prices, time.Minute, logger)),
	}, RouterOptions{Auth: authService}, logger)

	return f
}

func (f *fixture) do(method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(target string) *httptest.ResponseRecorder {
	return f.do(http.MethodGet, target, "", nil)
}

func newsItem(date, category string) model.NewsItem {
	return model.NewsItem{
		ID:             primitive.NewObjectID(),
		PrimaryTicker:  "ASELS",
		Category:       category,
		Newsworthiness: 0.8,
		PublishedAt:    &model.PublishedAt{Date: date, Time: "09:00"},
	}
}

func TestGetByDate_Validation(t *testing.T) {
	f := newFixture(t)

	w := f.get("/api/news/date/2026-1-6")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = f.get("/api/news/date/2026-02-30")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.get("/api/news/date/2026-01-06")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Data-Degraded"))
}

func TestGetNews_PaginationHeadersAndDecoration(t *testing.T) {
	f := newFixture(t)
	f.news.items = []model.NewsItem{newsItem("2026-01-06", "SPK"), newsItem("2026-01-05", "")}

	w := f.get("/api/news?page=0&pageSize=1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "1", w.Header().Get("X-Page"))
	assert.Equal(t, "100", w.Header().Get("X-Page-Size"))

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "/banners/di%C4%9Fer.jpg", items[0]["imageUrl"])
	assert.Equal(t, true, items[0]["isImportant"])
	assert.Equal(t, "2026-01-06", items[0]["publishedAt"].(map[string]interface{})["date"])
	assert.Equal(t, f.news.items[0].ID.Hex(), items[0]["id"])
}

func TestGetNews_DegradesOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.news.err = errDown

	for _, target := range []string{"/api/news", "/api/news/latest", "/api/news/today", "/api/news/ticker/ASELS", "/api/news/range?from=2026-01-01&to=2026-01-06"} {
		t.Run(target, func(t *testing.T) {
			w := f.get(target)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "true", w.Header().Get("X-Data-Degraded"))
			assert.JSONEq(t, `[]`, w.Body.String())
		})
	}

	w := f.get("/api/news/" + primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = f.get("/api/news/count")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetByDateRange_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		query string
		code  int
	}{
		{"", http.StatusBadRequest},
		{"from=2026-01-01", http.StatusBadRequest},
		{"from=2026-01-01&to=06.01.2026", http.StatusBadRequest},
		{"from=2026-01-07&to=2026-01-01", http.StatusOK},
		{"from=2026-01-01&to=2026-01-06", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.get("/api/news/range?" + tt.query)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestGetByTickerAndCount(t *testing.T) {
	f := newFixture(t)
	f.news.items = []model.NewsItem{newsItem("2026-01-06", "SPK")}

	w := f.get("/api/news/ticker/asels?page=2&pageSize=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ASELS", w.Header().Get("X-Ticker"))
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "2", w.Header().Get("X-Page"))

	w = f.get("/api/news/count?ticker=asels")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ticker":"ASELS","count":1}`, w.Body.String())

	w = f.get("/api/news/count")
	assert.JSONEq(t, `{"count":1}`, w.Body.String())
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	item := newsItem("2026-01-06", "SPK")
	f.news.items = []model.NewsItem{item}

	w := f.get("/api/news/" + item.ID.Hex())
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.get("/api/news/" + primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"News not found"}`, w.Body.String())

	w = f.get("/api/news/not-an-object-id")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetChart_IntradayLabels(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 6, 7, 0, 0, 0, time.UTC)
	f.chart.body = fmt.Sprintf(`{"dates":[%d,%d,%d],"data":[100,101.25,99.5]}`,
		base.UnixMilli(), base.Add(30*time.Minute).UnixMilli(), base.Add(time.Hour).UnixMilli())

	w := f.get("/api/chart/ticker?symbol=ASELS&time=1G")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"date":"2026-01-06 10:00","price":100},
		{"date":"2026-01-06 10:30","price":101.25},
		{"date":"2026-01-06 11:00","price":99.5}
	]`, w.Body.String())

	w = f.get("/api/chart/ticker.png?symbol=ASELS&time=1G")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestGetChart_Errors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.get("/api/chart/ticker?symbol=ASELS").Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/api/chart/ticker?time=1G").Code)

	f.chart.err = errDown
	w := f.get("/api/chart/ticker?symbol=ASELS&time=1G")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Data-Degraded"))
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusServiceUnavailable, f.get("/api/chart/ticker.png?symbol=ASELS&time=1G").Code)
}

func TestPrices(t *testing.T) {
	f := newFixture(t)
	f.prices.items = []model.PriceItem{
		{Ticker: "ASELS", ExtraElements: map[string]interface{}{"DailyChange": 1.5}},
		{Ticker: "THYAO", ExtraElements: map[string]interface{}{"DailyChange": -0.5}},
	}

	w := f.get("/api/prices")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"extraElements":{"DailyChange":1.5}`)

	assert.Equal(t, http.StatusOK, f.get("/api/prices/ticker/asels").Code)
	assert.Equal(t, http.StatusNotFound, f.get("/api/prices/ticker/NOPE").Code)
	assert.Equal(t, http.StatusNotFound, f.get("/api/prices/indices/XU100").Code)

	w = f.get("/api/prices/summary")
	assert.JSONEq(t, `{"rising":1,"falling":1,"neutral":0,"total":2}`, w.Body.String())

	w = f.get("/api/Prices")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/api/prices", w.Header().Get("Location"))
}

func TestGetCompany(t *testing.T) {
	f := newFixture(t)

	w := f.get("/api/company/asels")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbol":"ASELS","name":"ASELSAN","financials":{}}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, f.get("/api/company/%20").Code)
}

func TestSitemap(t *testing.T) {
	f := newFixture(t)
	f.prices.items = []model.PriceItem{{Ticker: "ASELS"}}

	w := f.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<loc>https://kaphaber.com/companies/ASELS</loc>")
}

func login(t *testing.T, f *fixture) string {
	t.Helper()
	w := f.do(http.MethodPost, "/admin/login", `{"username":"admin@kaphaber.com","password":"s3cret"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func TestAdmin_LoginAndProtectedRoutes(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/admin/login", `{"username":"admin@kaphaber.com","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = f.do(http.MethodPost, "/admin/login", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnauthorized, f.get("/admin/services").Code)

	auth := http.Header{"Authorization": {"Bearer " + login(t, f)}}

	w = f.do(http.MethodGet, "/admin/services", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":"/services","method":"GET"}`, w.Body.String())

	w = f.do(http.MethodPost, "/admin/services/news_pipeline/start", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":"/services/news_pipeline/start","method":"POST"}`, w.Body.String())

	w = f.do(http.MethodPost, "/admin/assets/reindex", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"files"`)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, "service.start", f.publisher.events[0].Action)
	assert.Equal(t, "news_pipeline", f.publisher.events[0].Target)
	assert.Equal(t, "admin@kaphaber.com", f.publisher.events[0].Username)
	assert.NotEmpty(t, f.publisher.events[0].RequestID)
	assert.Equal(t, "assets.reindex", f.publisher.events[1].Action)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
