package assets

import (
	"context"
	"sync/atomic"

	"github.com/yourorg/kap-news/internal/metrics"

	"go.uber.org/zap"
)

// Store holds the current Index and swaps it atomically on rebuild
type Store struct {
	builder *Builder
	current atomic.Pointer[Index]
	logger  *zap.Logger
}

// NewStore creates a store holding an empty index until the first Reindex
func NewStore(builder *Builder, logger *zap.Logger) *Store {
	s := &Store{
		builder: builder,
		logger:  logger,
	}
	s.current.Store(NewIndex())
	return s
}

// Current returns the active index, never nil
func (s *Store) Current() *Index {
	return s.current.Load()
}

// Reindex rebuilds the index. On failure the previous index stays active.
func (s *Store) Reindex(ctx context.Context) (*Index, error) {
	idx, err := s.builder.Build(ctx)
	if err != nil {
		metrics.AssetIndexBuilds.WithLabelValues("error").Inc()
		s.logger.Error("Failed to rebuild asset index", zap.Error(err))
		return nil, err
	}
	s.current.Store(idx)
	metrics.AssetIndexBuilds.WithLabelValues("ok").Inc()

	stats := idx.Stats()
	for kind, n := range stats {
		metrics.AssetIndexFiles.WithLabelValues(kind).Set(float64(n))
	}
	s.logger.Info("Asset index rebuilt",
		zap.Int("custom", stats["custom"]),
		zap.Int("banners", stats["banners"]),
		zap.Int("financials", stats["financials"]))
	return idx, nil
}
