package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yourorg/kap-news/internal/model"
	"github.com/yourorg/kap-news/internal/storage"

	"go.uber.org/zap"
)

// CompanyService assembles company details from the ticker collection and
// the per-company financials files
type CompanyService struct {
	tickers       TickerStore
	index         AssetIndex
	files         FileReader
	financialsDir string
	logger        *zap.Logger
}

// NewCompanyService creates a new company service
func NewCompanyService(tickers TickerStore, index AssetIndex, files FileReader, financialsDir string, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		tickers:       tickers,
		index:         index,
		files:         files,
		financialsDir: financialsDir,
		logger:        logger,
	}
}

// GetDetails returns the name and financials of a company. A missing ticker
// record falls back to the symbol as name; missing or unreadable financials
// yield an empty map.
func (s *CompanyService) GetDetails(ctx context.Context, symbol string) (*model.CompanyDetails, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	ticker, err := s.tickers.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker %s: %w", symbol, err)
	}
	name := symbol
	if ticker != nil && ticker.Name != "" {
		name = ticker.Name
	}

	return &model.CompanyDetails{
		Symbol:     symbol,
		Name:       name,
		Financials: s.loadFinancials(ctx, symbol, name),
	}, nil
}

func (s *CompanyService) loadFinancials(ctx context.Context, symbol, name string) map[string]interface{} {
	financials := map[string]interface{}{}

	file, ok := s.index.Current().FinancialsFile(symbol, name)
	if !ok {
		return financials
	}

	data, err := s.files.Read(ctx, path.Join(s.financialsDir, file))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("Failed to read financials file", zap.Error(err), zap.String("file", file))
		}
		return financials
	}

	if err := decodeFinancials(data, &financials); err != nil {
		s.logger.Warn("Failed to parse financials file", zap.Error(err), zap.String("file", file))
		return map[string]interface{}{}
	}
	return financials
}

// decodeFinancials keeps numbers as json.Number so large integers survive unchanged
func decodeFinancials(data []byte, out *map[string]interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after financials object")
	}
	return nil
}
