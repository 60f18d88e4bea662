package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/storage"

	"go.uber.org/zap"
)

const financialsSuffix = "_financials.json"

// customImagePattern matches "{TICKER}___date__ _{YYYY-MM-DD}__..." file names
var customImagePattern = regexp.MustCompile(`(?i)^(.*?)___date__ _(\d{4}-\d{2}-\d{2})__`)

// Index is an immutable snapshot of the asset tree
type Index struct {
	custom     map[string]string
	banners    map[string][]string
	financials map[string]struct{}
	finSorted  []string
	BuiltAt    time.Time
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{
		custom:     make(map[string]string),
		banners:    make(map[string][]string),
		financials: make(map[string]struct{}),
	}
}

func customKey(ticker, date string) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + "|" + date
}

// CustomImage returns the custom image file for a ticker and date
func (i *Index) CustomImage(ticker, date string) (string, bool) {
	if strings.TrimSpace(ticker) == "" || date == "" {
		return "", false
	}
	name, ok := i.custom[customKey(ticker, date)]
	return name, ok
}

// Banners returns the image files of a banner folder
func (i *Index) Banners(folder string) []string {
	return i.banners[folder]
}

// FinancialsFile picks the financials file of a company. The name qualified
// file wins, then the bare symbol file, then any file for the symbol.
func (i *Index) FinancialsFile(symbol, name string) (string, bool) {
	if symbol == "" {
		return "", false
	}
	if name != "" {
		candidate := fmt.Sprintf("%s, %s%s", symbol, name, financialsSuffix)
		if _, ok := i.financials[candidate]; ok {
			return candidate, true
		}
	}
	if candidate := symbol + financialsSuffix; i.has(candidate) {
		return candidate, true
	}
	prefix := symbol + ", "
	for _, f := range i.finSorted {
		if strings.HasPrefix(f, prefix) {
			return f, true
		}
	}
	return "", false
}

func (i *Index) has(name string) bool {
	_, ok := i.financials[name]
	return ok
}

// Stats reports file counts per kind
func (i *Index) Stats() map[string]int {
	banners := 0
	for _, files := range i.banners {
		banners += len(files)
	}
	return map[string]int{
		"custom":     len(i.custom),
		"banners":    banners,
		"financials": len(i.financials),
	}
}

// Builder scans storage into a new Index
type Builder struct {
	storage    storage.Storage
	cfg        config.AssetsConfig
	categories map[string]string
	logger     *zap.Logger
}

// NewBuilder creates a new index builder
func NewBuilder(store storage.Storage, cfg config.AssetsConfig, categories map[string]string, logger *zap.Logger) *Builder {
	return &Builder{
		storage:    store,
		cfg:        cfg,
		categories: categories,
		logger:     logger,
	}
}

// Build scans every asset directory. Missing directories yield empty
// sections; any other storage error aborts the build.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	idx := NewIndex()

	customFiles, err := b.list(ctx, b.cfg.CustomImagesDir)
	if err != nil {
		return nil, err
	}
	// Listing is sorted so the first match per key is the lexicographic first
	for _, name := range customFiles {
		m := customImagePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		key := customKey(m[1], m[2])
		if _, exists := idx.custom[key]; !exists {
			idx.custom[key] = name
		}
	}

	for _, folder := range b.bannerFolders() {
		files, err := b.list(ctx, path.Join(b.cfg.BannersDir, folder))
		if err != nil {
			return nil, err
		}
		var images []string
		for _, f := range files {
			if isImageFile(f) {
				images = append(images, f)
			}
		}
		if len(images) > 0 {
			idx.banners[folder] = images
		}
	}

	finFiles, err := b.list(ctx, b.cfg.FinancialsDir)
	if err != nil {
		return nil, err
	}
	for _, f := range finFiles {
		if strings.HasSuffix(f, financialsSuffix) {
			idx.financials[f] = struct{}{}
			idx.finSorted = append(idx.finSorted, f)
		}
	}
	sort.Strings(idx.finSorted)

	idx.BuiltAt = time.Now().UTC()
	return idx, nil
}

func (b *Builder) list(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	files, err := b.storage.List(ctx, dir)
	if errors.Is(err, storage.ErrNotFound) {
		b.logger.Debug("Asset directory not found", zap.String("dir", dir))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// bannerFolders returns the distinct folders the category dictionary points at
func (b *Builder) bannerFolders() []string {
	seen := map[string]struct{}{b.cfg.OtherCategoryDir: {}}
	for _, folder := range b.categories {
		seen[folder] = struct{}{}
	}
	folders := make([]string, 0, len(seen))
	for f := range seen {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders
}

func isImageFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
