package assets

import (
	"math/rand"
	"net/url"
	"strings"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/model"
)

// otherCategory is used when a news item has no category
const otherCategory = "Diğer"

// IndexSource provides the active asset index
type IndexSource interface {
	Current() *Index
}

// ImageResolver picks the display image of a news item
type ImageResolver struct {
	source     IndexSource
	cfg        config.AssetsConfig
	categories map[string]string
	pick       func(n int) int
}

// NewImageResolver creates a resolver. categories maps lower-case category
// names to banner folders.
func NewImageResolver(source IndexSource, cfg config.AssetsConfig, categories map[string]string) *ImageResolver {
	return &ImageResolver{
		source:     source,
		cfg:        cfg,
		categories: categories,
		pick:       rand.Intn,
	}
}

// WithPicker replaces the random banner selection
func (r *ImageResolver) WithPicker(pick func(n int) int) *ImageResolver {
	r.pick = pick
	return r
}

// Resolve returns the image URL of an item: its custom image, else a random
// banner of its category, else the default banner. Never empty.
func (r *ImageResolver) Resolve(item *model.NewsItem) string {
	idx := r.source.Current()
	if u, ok := r.CustomImageURL(idx, item.PrimaryTicker, item.Date()); ok {
		return u
	}
	if u, ok := r.BannerURL(idx, item.Category); ok {
		return u
	}
	return r.DefaultURL()
}

// CustomImageURL looks up a custom per-article image
func (r *ImageResolver) CustomImageURL(idx *Index, ticker, date string) (string, bool) {
	name, ok := idx.CustomImage(ticker, date)
	if !ok {
		return "", false
	}
	return joinURL(r.cfg.CustomImagesURL, name), true
}

// BannerURL picks a random banner from the category folder
func (r *ImageResolver) BannerURL(idx *Index, category string) (string, bool) {
	folder := r.Folder(category)
	files := idx.Banners(folder)
	if len(files) == 0 {
		return "", false
	}
	return joinURL(r.cfg.BannerBaseURL, folder, files[r.pick(len(files))]), true
}

// DefaultURL is the last resort banner
func (r *ImageResolver) DefaultURL() string {
	return joinURL(r.cfg.BannerBaseURL, r.cfg.DefaultBanner)
}

// Folder maps a category to its banner folder; unknown categories use the
// Other folder
func (r *ImageResolver) Folder(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = otherCategory
	}
	if folder, ok := r.categories[strings.ToLower(category)]; ok {
		return folder
	}
	for name, folder := range r.categories {
		if strings.EqualFold(name, category) {
			return folder
		}
	}
	return r.cfg.OtherCategoryDir
}

// joinURL escapes every segment and joins them under base
func joinURL(base string, segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, strings.TrimRight(base, "/"))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}
