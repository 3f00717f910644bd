package artic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/artsel/internal/domain"
	"github.com/bnema/artsel/internal/ports"
)

const (
	DefaultBaseURL  = "https://api.artic.edu/api/v1"
	artworksPath    = "/artworks"
	maxResponseSize = 1 << 20
	userAgent       = "artsel (https://github.com/bnema/artsel)"
)

var DefaultFields = []string{"id", "title", "place_of_origin", "artist_display", "inscriptions", "date_start", "date_end"}

// Client reads artworks from the Art Institute of Chicago public API.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	PageSize       int
	PageBase       int
	Fields         []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

var (
	_ ports.PageSource    = (*Client)(nil)
	_ ports.ArtworkLookup = (*Client)(nil)
)

type artworkPayload struct {
	ID            int64   `json:"id"`
	Title         *string `json:"title"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	ArtistDisplay *string `json:"artist_display"`
	Inscriptions  *string `json:"inscriptions"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
}

type paginationPayload struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

type listPayload struct {
	Pagination paginationPayload `json:"pagination"`
	Data       []artworkPayload  `json:"data"`
}

type errorPayload struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// FetchPage loads one page. pageIndex is 0-based; PageBase is added at the
// HTTP boundary because the API counts pages from 1.
func (c *Client) FetchPage(ctx context.Context, pageIndex int) (domain.Page, error) {
	if pageIndex < 0 {
		return domain.Page{}, fmt.Errorf("%w: %d", domain.ErrInvalidPageIndex, pageIndex)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(pageIndex+c.PageBase))
	query.Set("limit", strconv.Itoa(c.pageSize()))
	query.Set("fields", strings.Join(c.fields(), ","))

	start := time.Now()
	payload, status, err := c.get(ctx, query)
	if err != nil {
		c.logger().Warn("artworks page request failed", "page", pageIndex, "status", status, "error", err)
		return domain.Page{}, &domain.FetchError{PageIndex: pageIndex, StatusCode: status, Err: err}
	}
	c.logger().Debug("artworks page fetched", "page", pageIndex, "records", len(payload.Data), "total", payload.Pagination.Total, "duration", time.Since(start).String())

	return domain.Page{
		Index:   pageIndex,
		Records: toArtworks(payload.Data),
		Total:   payload.Pagination.Total,
		Size:    c.pageSize(),
	}, nil
}

// LookupArtworks loads artworks by id. Unknown ids are absent from the result.
func (c *Client) LookupArtworks(ctx context.Context, ids []domain.ArtworkID) ([]domain.Artwork, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	encoded := make([]string, 0, len(ids))
	for _, id := range ids {
		encoded = append(encoded, strconv.FormatInt(int64(id), 10))
	}

	query := url.Values{}
	query.Set("ids", strings.Join(encoded, ","))
	query.Set("limit", strconv.Itoa(len(ids)))
	query.Set("fields", strings.Join(c.fields(), ","))

	payload, status, err := c.get(ctx, query)
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("lookup artworks: status %d: %w", status, err)
		}
		return nil, fmt.Errorf("lookup artworks: %w", err)
	}

	return toArtworks(payload.Data), nil
}

func (c *Client) get(ctx context.Context, query url.Values) (listPayload, int, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return listPayload{}, 0, err
	}
	endpoint.RawQuery = query.Encode()

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return listPayload{}, 0, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := c.httpClient().Do(request)
	if err != nil {
		return listPayload{}, 0, fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return listPayload{}, response.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return listPayload{}, response.StatusCode, errors.New(describeError(body, response.StatusCode))
	}

	var payload listPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return listPayload{}, response.StatusCode, fmt.Errorf("decode payload: %w", err)
	}

	return payload, response.StatusCode, nil
}

func (c *Client) endpoint() (*url.URL, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	parsed, err := url.Parse(strings.TrimRight(base, "/") + artworksPath)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	return parsed, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return context.WithTimeout(ctx, timeout)
}

func (c *Client) pageSize() int {
	if c.PageSize <= 0 {
		return domain.DefaultPageSize
	}
	return c.PageSize
}

func (c *Client) fields() []string {
	if len(c.Fields) == 0 {
		return DefaultFields
	}
	return c.Fields
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func describeError(body []byte, status int) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil || (payload.Error == "" && payload.Detail == "") {
		trimmed := strings.TrimSpace(string(body))
		if trimmed == "" {
			return http.StatusText(status)
		}
		return trimmed
	}
	switch {
	case payload.Error == "":
		return payload.Detail
	case payload.Detail == "":
		return payload.Error
	default:
		return fmt.Sprintf("%s: %s", payload.Error, payload.Detail)
	}
}

func toArtworks(items []artworkPayload) []domain.Artwork {
	artworks := make([]domain.Artwork, 0, len(items))
	for _, item := range items {
		artworks = append(artworks, domain.Artwork{
			ID:            domain.ArtworkID(item.ID),
			Title:         deref(item.Title),
			PlaceOfOrigin: deref(item.PlaceOfOrigin),
			ArtistDisplay: deref(item.ArtistDisplay),
			Inscriptions:  deref(item.Inscriptions),
			DateStart:     item.DateStart,
			DateEnd:       item.DateEnd,
		})
	}
	return artworks
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
