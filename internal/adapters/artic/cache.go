package artic

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnema/artsel/internal/domain"
	"github.com/bnema/artsel/internal/ports"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedSource keeps recently fetched pages so that flipping back and forth
// does not refetch. Failed fetches are never cached.
type CachedSource struct {
	source ports.PageSource
	cache  *expirable.LRU[int, domain.Page]
	logger *slog.Logger
}

var _ ports.PageSource = (*CachedSource)(nil)

func NewCachedSource(source ports.PageSource, size int, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &CachedSource{
		source: source,
		cache:  expirable.NewLRU[int, domain.Page](size, nil, ttl),
		logger: logger,
	}
}

func (c *CachedSource) FetchPage(ctx context.Context, pageIndex int) (domain.Page, error) {
	if cached, ok := c.cache.Get(pageIndex); ok {
		c.logger.Debug("page cache hit", "page", pageIndex, "cached_pages", c.Len())
		return clonePage(cached), nil
	}

	page, err := c.source.FetchPage(ctx, pageIndex)
	if err != nil {
		return domain.Page{}, err
	}

	evicted := c.cache.Add(pageIndex, clonePage(page))
	c.logger.Debug("page cached", "page", pageIndex, "cached_pages", c.Len(), "evicted", evicted)
	return page, nil
}

func (c *CachedSource) Purge() {
	c.cache.Purge()
}

func (c *CachedSource) Len() int {
	return c.cache.Len()
}

func clonePage(page domain.Page) domain.Page {
	page.Records = append([]domain.Artwork(nil), page.Records...)
	return page
}
