package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yourorg/kap-news/internal/model"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

// IntradayRange is the time range whose points carry a time of day
const IntradayRange = "1G"

const (
	dayLayout      = "2006-01-02"
	intradayLayout = "2006-01-02 15:04"
)

// ErrMalformedChart is returned when the upstream payload is not JSON
var ErrMalformedChart = errors.New("malformed chart payload")

// ChartService fetches and normalizes price charts
type ChartService struct {
	fetcher  ChartFetcher
	location *time.Location
	logger   *zap.Logger
}

// NewChartService creates a new chart service. Labels are rendered in location.
func NewChartService(fetcher ChartFetcher, location *time.Location, logger *zap.Logger) *ChartService {
	return &ChartService{
		fetcher:  fetcher,
		location: location,
		logger:   logger,
	}
}

// GetChart returns the chart points of a symbol in upstream order
func (s *ChartService) GetChart(ctx context.Context, symbol, timeRange string) ([]model.ChartData, error) {
	body, err := s.fetcher.FetchChart(ctx, symbol, timeRange)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}

	points, err := NormalizeChart(body, timeRange, s.location)
	if err != nil {
		s.logger.Warn("Failed to parse chart payload",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("time", timeRange))
		return nil, err
	}
	return points, nil
}

// NormalizeChart turns a {"dates": [...ms], "data": [...prices]} payload into
// labelled points. The payload may arrive wrapped in a JSON string. Missing
// keys, mismatched lengths or a non-integer timestamp yield no points at all;
// a non-numeric price becomes 0.
func NormalizeChart(body []byte, timeRange string, loc *time.Location) ([]model.ChartData, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedChart, err)
		}
		body = []byte(inner)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedChart, err)
	}

	points := []model.ChartData{}
	rawDates, okDates := root["dates"]
	rawPrices, okPrices := root["data"]
	if !okDates || !okPrices {
		return points, nil
	}

	var dates, prices []json.RawMessage
	if json.Unmarshal(rawDates, &dates) != nil || json.Unmarshal(rawPrices, &prices) != nil {
		return points, nil
	}
	if len(dates) != len(prices) {
		return points, nil
	}

	layout := dayLayout
	if timeRange == IntradayRange {
		layout = intradayLayout
	}

	for i := range dates {
		var ms int64
		if err := json.Unmarshal(dates[i], &ms); err != nil {
			return []model.ChartData{}, nil
		}
		var price float64
		if err := json.Unmarshal(prices[i], &price); err != nil {
			price = 0
		}
		t := time.UnixMilli(ms).In(loc)
		points = append(points, model.ChartData{
			Date:  t.Format(layout),
			Price: price,
			Time:  t,
		})
	}
	return points, nil
}

// RenderChartPNG renders chart points as a PNG line chart
func RenderChartPNG(points []model.ChartData, title string) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Time
		yValues[i] = p.Price
	}

	layout := dayLayout
	if xValues[len(xValues)-1].Sub(xValues[0]) < 48*time.Hour {
		layout = "15:04"
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).In(xValues[0].Location()).Format(layout)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: title,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
