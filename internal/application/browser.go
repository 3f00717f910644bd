package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bnema/artsel/internal/domain"
	"github.com/bnema/artsel/internal/ports"
	"github.com/bnema/artsel/internal/selection"
)

var ErrStaleResponse = errors.New("stale page response")

// Request identifies one navigation. Seq increases with every Navigate call so
// that a late response for an older request can be recognised and dropped.
type Request struct {
	PageIndex int
	Seq       uint64
}

// Browser is the session behind the listing UI. Its methods are meant to be
// called from a single event loop; only Fetch may run elsewhere.
type Browser struct {
	source    ports.PageSource
	selection *selection.Manager[domain.ArtworkID, domain.Artwork]
	logger    *slog.Logger
	pageSize  int

	page    domain.Page
	latest  Request
	seq     uint64
	loading bool
}

func NewBrowser(source ports.PageSource, pageSize int, logger *slog.Logger) *Browser {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Browser{
		source:    source,
		selection: selection.NewManager(domain.Artwork.Identity),
		logger:    logger,
		pageSize:  pageSize,
		page:      domain.Page{Size: pageSize},
	}
}

func (b *Browser) Navigate(pageIndex int) (Request, error) {
	if pageIndex < 0 {
		return Request{}, fmt.Errorf("%w: %d", domain.ErrInvalidPageIndex, pageIndex)
	}
	if count := b.page.PageCount(); count > 0 && pageIndex >= count {
		return Request{}, fmt.Errorf("%w: page %d of %d", domain.ErrPageOutOfRange, pageIndex+1, count)
	}

	b.seq++
	b.latest = Request{PageIndex: pageIndex, Seq: b.seq}
	b.loading = true
	b.logger.Debug("navigate", "page", pageIndex, "seq", b.seq)

	return b.latest, nil
}

// Fetch does not touch session state.
func (b *Browser) Fetch(ctx context.Context, req Request) (domain.Page, error) {
	return b.source.FetchPage(ctx, req.PageIndex)
}

func (b *Browser) Deliver(req Request, page domain.Page, fetchErr error) (Snapshot, error) {
	if req.Seq == 0 || req.Seq != b.latest.Seq {
		b.logger.Debug("discarding stale page response", "page", req.PageIndex, "seq", req.Seq, "latest", b.latest.Seq)
		return b.Snapshot(), ErrStaleResponse
	}

	b.loading = false
	if fetchErr != nil {
		b.logger.Warn("page fetch failed", "page", req.PageIndex, "error", fetchErr)
		return b.Snapshot(), fetchErr
	}

	page.Index = req.PageIndex
	if page.Size <= 0 {
		page.Size = b.pageSize
	}
	// The API answers an index past the end with an empty page.
	if count := page.PageCount(); page.Total > 0 && req.PageIndex >= count {
		b.logger.Warn("page past the end of the catalog", "page", req.PageIndex, "page_count", count, "total", page.Total)
		return b.Snapshot(), fmt.Errorf("%w: page %d of %d", domain.ErrPageOutOfRange, req.PageIndex+1, count)
	}

	b.page = page
	view := b.selection.OnPageLoaded(page.Records)
	b.logger.Debug("page loaded", "page", page.Index, "ids", page.IDs(), "total", page.Total, "selected_on_page", len(view))

	return b.Snapshot(), nil
}

func (b *Browser) Load(ctx context.Context, pageIndex int) (Snapshot, error) {
	req, err := b.Navigate(pageIndex)
	if err != nil {
		return b.Snapshot(), err
	}

	page, err := b.Fetch(ctx, req)
	return b.Deliver(req, page, err)
}

// ToggleSelection takes the complete set of checked rows on the current page.
func (b *Browser) ToggleSelection(records []domain.Artwork) Snapshot {
	view := b.selection.Toggle(records)
	b.logger.Debug("selection changed", "page", b.page.Index, "selected_on_page", len(view), "selected", b.selection.Count())
	return b.Snapshot()
}

// ToggleRow flips one row of the current page. Unknown ids are ignored.
func (b *Browser) ToggleRow(id domain.ArtworkID) Snapshot {
	view := b.selection.View()
	if b.selection.IsSelected(id) {
		view = slices.DeleteFunc(view, func(a domain.Artwork) bool { return a.ID == id })
		return b.ToggleSelection(view)
	}

	for _, record := range b.page.Records {
		if record.ID == id {
			return b.ToggleSelection(append(view, record))
		}
	}

	return b.Snapshot()
}

// SetPageSelected checks or clears every row of the current page.
func (b *Browser) SetPageSelected(all bool) Snapshot {
	if all {
		return b.ToggleSelection(b.selection.Current())
	}

	return b.ToggleSelection(nil)
}

func (b *Browser) BulkApply(n int) Snapshot {
	view := b.selection.BulkApply(n)
	b.logger.Debug("bulk apply", "page", b.page.Index, "requested", n, "selected_on_page", len(view), "selected", b.selection.Count())
	return b.Snapshot()
}

func (b *Browser) IsSelected(id domain.ArtworkID) bool {
	return b.selection.IsSelected(id)
}

func (b *Browser) SelectedIDs() []domain.ArtworkID {
	ids := b.selection.Identities()
	slices.Sort(ids)
	return ids
}

func (b *Browser) Snapshot() Snapshot {
	return Snapshot{
		Page:           b.page,
		View:           b.selection.View(),
		SelectedCount:  b.selection.Count(),
		Loading:        b.loading,
		RequestedIndex: b.latest.PageIndex,
		PageCount:      b.page.PageCount(),
		FirstRow:       b.page.FirstRow(),
		LastRow:        b.page.LastRow(),
	}
}
