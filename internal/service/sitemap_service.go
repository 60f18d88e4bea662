package service

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/yourorg/kap-news/internal/config"

	"go.uber.org/zap"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapURL is a single <url> entry
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapService builds the public sitemap
type SitemapService struct {
	news   NewsStore
	prices PriceStore
	cfg    config.SitemapConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewSitemapService creates a new sitemap service
func NewSitemapService(news NewsStore, prices PriceStore, cfg config.SitemapConfig, logger *zap.Logger) *SitemapService {
	return &SitemapService{
		news:   news,
		prices: prices,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// URLs lists the static pages, one page per priced company and the latest
// news. A failing store only drops its own section.
func (s *SitemapService) URLs(ctx context.Context) []SitemapURL {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	lastMod := s.now().UTC().Format("2006-01-02")
	entry := func(loc, priority, freq string) SitemapURL {
		return SitemapURL{Loc: loc, LastMod: lastMod, ChangeFreq: freq, Priority: priority}
	}

	urls := []SitemapURL{
		entry(base, "1.0", "daily"),
		entry(base+"/companies", "0.8", "daily"),
		entry(base+"/about", "0.5", "monthly"),
	}

	prices, err := s.prices.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list prices for sitemap", zap.Error(err))
	}
	for _, p := range prices {
		if p.Ticker != "" {
			urls = append(urls, entry(base+"/companies/"+p.Ticker, "0.7", "daily"))
		}
	}

	if s.cfg.LatestNews > 0 {
		news, err := s.news.ListLatest(ctx, s.cfg.LatestNews)
		if err != nil {
			s.logger.Error("Failed to list news for sitemap", zap.Error(err))
		}
		for _, n := range news {
			if !n.ID.IsZero() {
				urls = append(urls, entry(base+"/news/"+n.ID.Hex(), "0.6", "weekly"))
			}
		}
	}

	return urls
}

// Render returns the sitemap document
func (s *SitemapService) Render(ctx context.Context) ([]byte, error) {
	out, err := xml.MarshalIndent(urlSet{Xmlns: sitemapNamespace, URLs: s.URLs(ctx)}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
