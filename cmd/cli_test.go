package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	exporttoml "github.com/bnema/artsel/internal/adapters/export/toml"
	"github.com/bnema/artsel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCommandRendersView(t *testing.T) {
	catalog := newFakeCatalogServer(t, 34, withLatency(200*time.Millisecond))

	stdout, stderr, err := executeCLI(t, t.TempDir(), "page", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "page 2 of 3")
	assert.Contains(t, stdout, "Showing 13 to 24 of 34 entries")
	assert.Contains(t, stdout, "Selected: 0 rows")
	assert.Contains(t, stdout, "Artwork 13")
	assert.Contains(t, stderr, "Fetching page 2")
	assert.Equal(t, []string{"2"}, catalog.pagesRequested())
}

func TestPageCommandJSONOutput(t *testing.T) {
	newFakeCatalogServer(t, 34)

	stdout, _, err := executeCLI(t, t.TempDir(), "page", "3", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var out snapshotOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 3, out.Page)
	assert.Equal(t, 3, out.PageCount)
	assert.Equal(t, 25, out.FirstRow)
	assert.Equal(t, 34, out.LastRow)
	assert.Len(t, out.Records, 10)
	assert.Equal(t, "Artist 25\nDetails", out.Records[0].ArtistDisplay)
	assert.Zero(t, out.SelectedCount)
}

func TestPageCommandTableFormat(t *testing.T) {
	newFakeCatalogServer(t, 34)

	stdout, _, err := executeCLI(t, t.TempDir(), "page", "1", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PLACE OF ORIGIN")
	assert.Contains(t, stdout, "Artwork 12")
	assert.Contains(t, stdout, "Selected: 0 rows")
}

func TestPageCommandRejectsInvalidInput(t *testing.T) {
	newFakeCatalogServer(t, 34)

	_, _, err := executeCLI(t, t.TempDir(), "page", "0")
	require.ErrorIs(t, err, domain.ErrInvalidPageIndex)

	_, _, err = executeCLI(t, t.TempDir(), "page", "two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse page number")

	_, _, err = executeCLI(t, t.TempDir(), "page", "1", "--format", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestPageCommandReturnsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"status":500,"error":"Internal error"}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("ARTSEL_API_BASE_URL", server.URL)

	_, _, err := executeCLI(t, t.TempDir(), "page", "1", "--json")
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "status 500")
}

func TestPageCommandHoldsLogsUntilSpinnerClears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"status":500,"error":"Internal error"}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("ARTSEL_API_BASE_URL", server.URL)

	_, stderr, err := executeCLI(t, t.TempDir(), "--loglevel", "debug", "page", "1")
	require.ErrorIs(t, err, domain.ErrFetchFailed)

	spinnerEnd := strings.LastIndex(stderr, "Fetching page 1 (request 1)")
	require.GreaterOrEqual(t, spinnerEnd, 0, stderr)
	requestLog := strings.Index(stderr, "artworks page request failed")
	require.GreaterOrEqual(t, requestLog, 0, stderr)
	assert.Greater(t, requestLog, spinnerEnd)
	assert.Contains(t, stderr, "page fetch failed")
}

func TestPageCommandRejectsPagePastTheEnd(t *testing.T) {
	newFakeCatalogServer(t, 34)

	stdout, _, err := executeCLI(t, t.TempDir(), "page", "10")
	require.ErrorIs(t, err, domain.ErrPageOutOfRange)
	assert.Contains(t, err.Error(), "page 10 of 3")
	assert.Empty(t, stdout)
}

func TestLogRelayHoldsRecordsWhilePaused(t *testing.T) {
	out := &bytes.Buffer{}
	relay := newLogRelay(out)

	_, err := fmt.Fprintln(relay, "before")
	require.NoError(t, err)

	relay.pause()
	_, err = fmt.Fprintln(relay, "held one")
	require.NoError(t, err)
	_, err = fmt.Fprintln(relay, "held two")
	require.NoError(t, err)
	assert.Equal(t, "before\n", out.String())
	assert.Equal(t, 2, relay.heldLines())

	require.NoError(t, relay.resume())
	assert.Equal(t, "before\nheld one\nheld two\n", out.String())
	assert.Zero(t, relay.heldLines())

	_, err = fmt.Fprintln(relay, "after")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.String(), "held two\nafter\n"))
}

func TestReplayCrossPageScenario(t *testing.T) {
	newFakeCatalogServer(t, 34)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"replay", "--json",
		"page:1", "apply:15",
		"page:2", "apply:3",
		"page:1",
	)
	require.NoError(t, err)

	var out snapshotOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 15, out.SelectedCount)
	for _, record := range out.Records {
		assert.True(t, record.Selected, "record %d", record.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, out.SelectedIDs)
}

func TestReplayToggleClearsThenAdds(t *testing.T) {
	newFakeCatalogServer(t, 34)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"replay", "--json",
		"page:1", "toggle:1,3",
		"page:2", "row:17",
		"page:1", "toggle:2,500",
	)
	require.NoError(t, err)

	var out snapshotOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, []int64{2, 17, 500}, out.SelectedIDs)
	assert.Equal(t, 3, out.SelectedCount)
}

func TestReplayAllNoneAndScriptFile(t *testing.T) {
	newFakeCatalogServer(t, 34)

	script := filepath.Join(t.TempDir(), "events.txt")
	require.NoError(t, os.WriteFile(script, []byte("# select page two\npage:2\nall\n\npage:3 # last page\nall\nnone\n"), 0o644))

	stdout, _, err := executeCLI(t, t.TempDir(), "replay", "--json", "@"+script)
	require.NoError(t, err)

	var out snapshotOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 3, out.Page)
	assert.Equal(t, 12, out.SelectedCount)
	assert.Equal(t, int64(13), out.SelectedIDs[0])
}

func TestReplayRejectsBadEvents(t *testing.T) {
	newFakeCatalogServer(t, 34)

	tests := []struct {
		event   string
		wantErr string
	}{
		{event: "jump:2", wantErr: "unknown replay event"},
		{event: "page:x", wantErr: `event "page:x"`},
		{event: "page:0", wantErr: "page numbers start at 1"},
		{event: "row:1,2", wantErr: "want exactly one id"},
		{event: "toggle", wantErr: "missing ids"},
		{event: "all:3", wantErr: "takes no value"},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			_, _, err := executeCLI(t, t.TempDir(), "replay", tt.event)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReplayExportWithResolve(t *testing.T) {
	newFakeCatalogServer(t, 34)

	exportPath := filepath.Join(t.TempDir(), "selection.toml")
	_, stderr, err := executeCLI(t, t.TempDir(),
		"replay", "--json",
		"page:1", "row:2",
		"page:3", "row:30",
		"--export", exportPath, "--resolve",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 2 selected artworks to "+exportPath)

	export, err := exporttoml.Read(exportPath)
	require.NoError(t, err)
	assert.Equal(t, []domain.ArtworkID{2, 30}, export.IDs)
	require.Len(t, export.Artworks, 2)
	assert.Equal(t, "Artwork 30", export.Artworks[1].Title)
	assert.Equal(t, "Artist 30", export.Artworks[1].Artist)
	assert.NotEmpty(t, export.SessionID)
}

func TestReplayResolveRequiresExport(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "replay", "page:1", "--resolve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resolve requires --export")
}

func TestReplayServesRevisitsFromCache(t *testing.T) {
	catalog := newFakeCatalogServer(t, 34)

	_, _, err := executeCLI(t, t.TempDir(), "replay", "--json", "page:1", "page:2", "page:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, catalog.pagesRequested())
}

func TestReplayWithoutCacheRefetches(t *testing.T) {
	catalog := newFakeCatalogServer(t, 34)
	t.Setenv("ARTSEL_CACHE_SIZE", "0")

	_, _, err := executeCLI(t, t.TempDir(), "replay", "--json", "page:1", "page:2", "page:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "1"}, catalog.pagesRequested())
}

func TestConfigFileSetsPageSize(t *testing.T) {
	newFakeCatalogServer(t, 34)

	configPath := filepath.Join(t.TempDir(), "artsel.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[api]\npage_size = 5\n"), 0o644))

	stdout, _, err := executeCLI(t, t.TempDir(), "--config", configPath, "page", "2", "--json")
	require.NoError(t, err)

	var out snapshotOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 7, out.PageCount)
	assert.Len(t, out.Records, 5)
	assert.Equal(t, int64(6), out.Records[0].ID)
}

func TestDebugLogsCarrySessionID(t *testing.T) {
	newFakeCatalogServer(t, 34)

	_, stderr, err := executeCLI(t, t.TempDir(), "--loglevel", "debug", "--logformat", "json", "page", "1", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
		assert.NotEmpty(t, record["session"], line)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type fakeCatalogServer struct {
	total   int
	latency time.Duration

	mu    sync.Mutex
	pages []string
}

// newFakeCatalogServer serves /artworks like the public API: ids run from 1
// to total in listing order and pages are 1-based.
func newFakeCatalogServer(t *testing.T, total int, opts ...func(*fakeCatalogServer)) *fakeCatalogServer {
	t.Helper()

	catalog := &fakeCatalogServer{total: total}
	for _, opt := range opts {
		opt(catalog)
	}
	server := httptest.NewServer(http.HandlerFunc(catalog.serve))
	t.Cleanup(server.Close)
	t.Setenv("ARTSEL_API_BASE_URL", server.URL)
	return catalog
}

func withLatency(d time.Duration) func(*fakeCatalogServer) {
	return func(c *fakeCatalogServer) { c.latency = d }
}

func (c *fakeCatalogServer) pagesRequested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.pages...)
}

func (c *fakeCatalogServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/artworks" {
		http.NotFound(w, r)
		return
	}

	time.Sleep(c.latency)

	query := r.URL.Query()
	var ids []int
	if raw := query.Get("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, _ := strconv.Atoi(part)
			if id >= 1 && id <= c.total {
				ids = append(ids, id)
			}
		}
	} else {
		c.mu.Lock()
		c.pages = append(c.pages, query.Get("page"))
		c.mu.Unlock()

		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))
		for id := (page-1)*limit + 1; id <= min(page*limit, c.total); id++ {
			ids = append(ids, id)
		}
	}

	data := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{
			"id":              id,
			"title":           fmt.Sprintf("Artwork %d", id),
			"place_of_origin": "France",
			"artist_display":  fmt.Sprintf("Artist %d\nDetails", id),
			"inscriptions":    nil,
			"date_start":      1900 + id,
			"date_end":        1900 + id,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"pagination": map[string]any{"total": c.total},
		"data":       data,
	})
}
