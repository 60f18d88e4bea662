package handler

import (
	"net/http"

	"github.com/yourorg/kap-news/internal/middleware"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler of the API
type Handlers struct {
	News    *NewsHandler
	Price   *PriceHandler
	Chart   *ChartHandler
	Company *CompanyHandler
	Sitemap *SitemapHandler
	Admin   *AdminHandler
	Stream  *StreamHandler
}

// RouterOptions holds the cross-cutting pieces of the router
type RouterOptions struct {
	// Cache is applied to the chart and company routes, may be nil
	Cache     gin.HandlerFunc
	Auth      middleware.TokenValidator
	RateLimit struct {
		RequestsPerMinute int
		Burst             int
	}
}

// SetupRouter wires handlers and middleware into a gin engine
func SetupRouter(h Handlers, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	utils.RegisterValidators()

	router := gin.New()
	// The frontend requests /api/Prices, redirect to the canonical lower-case route
	router.RedirectFixedPath = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/sitemap.xml", h.Sitemap.GetSitemap)
	router.GET("/ws/prices", h.Stream.Prices)

	cached := []gin.HandlerFunc{}
	if opts.Cache != nil {
		cached = append(cached, opts.Cache)
	}

	api := router.Group("/api")
	if opts.RateLimit.RequestsPerMinute > 0 {
		api.Use(middleware.RateLimit(opts.RateLimit.RequestsPerMinute, opts.RateLimit.Burst))
	}
	{
		news := api.Group("/news")
		{
			news.GET("", h.News.GetNews)
			news.GET("/latest", h.News.GetLatest)
			news.GET("/today", h.News.GetToday)
			news.GET("/date/:date", h.News.GetByDate)
			news.GET("/range", h.News.GetByDateRange)
			news.GET("/ticker/:ticker", h.News.GetByTicker)
			news.GET("/count", h.News.GetCount)
			news.GET("/:id", h.News.GetByID)
		}

		prices := api.Group("/prices")
		{
			prices.GET("", h.Price.GetPrices)
			prices.GET("/ticker/:ticker", h.Price.GetByTicker)
			prices.GET("/summary", h.Price.GetSummary)
			prices.GET("/indices", h.Price.GetIndices)
			prices.GET("/indices/:code", h.Price.GetIndex)
		}

		chart := api.Group("/chart", cached...)
		{
			chart.GET("/ticker", h.Chart.GetChart)
			chart.GET("/ticker.png", h.Chart.GetChartImage)
		}

		api.GET("/company/:symbol", append(cached, h.Company.GetCompany)...)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/login", h.Admin.Login)

		protected := admin.Group("")
		protected.Use(middleware.AdminAuth(opts.Auth, logger))
		{
			protected.GET("/services", h.Admin.ListServices)
			protected.POST("/services/:name/start", h.Admin.StartService)
			protected.POST("/services/:name/stop", h.Admin.StopService)
			protected.GET("/services/:name/logs", h.Admin.ServiceLogs)
			protected.GET("/scheduler/jobs/:id", h.Admin.GetJob)
			protected.PUT("/scheduler/jobs/:id", h.Admin.UpdateJob)
			protected.POST("/summary/generate", h.Admin.GenerateSummary)
			protected.POST("/assets/reindex", h.Admin.ReindexAssets)
		}
	}

	return router
}
