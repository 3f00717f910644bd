package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bnema/artsel/internal/adapters/render/page"
	"github.com/bnema/artsel/internal/application"
	"github.com/bnema/artsel/internal/domain"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	minTableHeight = 3
	chromeHeight   = 9
)

type Options struct {
	StartPage   int
	BulkDefault int
	Logger      *slog.Logger
}

type pageLoadedMsg struct {
	req  application.Request
	page domain.Page
	err  error
}

type navigateFailedMsg struct {
	err error
}

type Model struct {
	ctx     context.Context
	browser *application.Browser
	opts    Options
	logger  *slog.Logger

	start    tea.Cmd
	keys     keyMap
	help     help.Model
	table    table.Model
	input    textinput.Model
	spinner  spinner.Model
	styles   styles
	snapshot application.Snapshot

	applying bool
	status   string
	err      error
	quitting bool
}

func New(ctx context.Context, browser *application.Browser, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.BulkDefault < 0 {
		opts.BulkDefault = 0
	}

	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(domain.DefaultPageSize),
		table.WithStyles(tableStyles()),
	)

	input := textinput.New()
	input.Prompt = "Select first n rows: "
	input.Placeholder = strconv.Itoa(opts.BulkDefault)
	input.CharLimit = 6
	input.Width = 8
	input.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:     ctx,
		browser: browser,
		opts:    opts,
		logger:  opts.Logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		table:   t,
		input:   input,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		styles: newStyles(),
	}

	// The first page is requested up front so the opening frame already
	// reports it as loading.
	m.start = m.navigate(opts.StartPage)
	m.snapshot = browser.Snapshot()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

// navigate runs on the event loop; only the returned fetch runs off it.
func (m Model) navigate(pageIndex int) tea.Cmd {
	req, err := m.browser.Navigate(pageIndex)
	if err != nil {
		return func() tea.Msg { return navigateFailedMsg{err: err} }
	}

	browser := m.browser
	ctx := m.ctx
	return func() tea.Msg {
		loaded, err := browser.Fetch(ctx, req)
		return pageLoadedMsg{req: req, page: loaded, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-chromeHeight, minTableHeight))
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.snapshot.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case pageLoadedMsg:
		return m.deliver(msg)
	case navigateFailedMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		if m.applying {
			return m.updateApplying(msg)
		}
		return m.updateBrowsing(msg)
	default:
		return m, nil
	}
}

func (m Model) deliver(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	previous := m.snapshot.Page.Index
	snapshot, err := m.browser.Deliver(msg.req, msg.page, msg.err)
	if errors.Is(err, application.ErrStaleResponse) {
		return m, nil
	}

	m.err = err
	m.setSnapshot(snapshot)

	// Nothing is resident yet, so fall back to the last page instead of
	// leaving an empty screen.
	if errors.Is(err, domain.ErrPageOutOfRange) && snapshot.PageCount == 0 {
		last := domain.Page{Total: msg.page.Total, Size: snapshot.Page.Size}.PageCount() - 1
		if last >= 0 && last < msg.req.PageIndex {
			m.err = nil
			m.status = fmt.Sprintf("page %d is past the end, showing page %d", msg.req.PageIndex+1, last+1)
			m.logger.Debug("start page past the end", "page", msg.req.PageIndex, "last", last)
			cmd := m.navigate(last)
			m.snapshot = m.browser.Snapshot()
			return m, tea.Batch(cmd, m.spinner.Tick)
		}
	}

	if err == nil && snapshot.Page.Index != previous {
		m.table.SetCursor(0)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		return m.step(-1)
	case key.Matches(msg, m.keys.Next):
		return m.step(1)
	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown(1)
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.cursorID(); ok {
			m.status = ""
			m.setSnapshot(m.browser.ToggleRow(id))
		}
		return m, nil
	case key.Matches(msg, m.keys.TogglePage):
		m.status = ""
		all := len(m.snapshot.View) < len(m.snapshot.Page.Records)
		m.setSnapshot(m.browser.SetPageSelected(all))
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		m.applying = true
		m.input.SetValue(strconv.Itoa(m.opts.BulkDefault))
		return m, m.input.Focus()
	default:
		return m, nil
	}
}

func (m Model) updateApplying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		raw := strings.TrimSpace(m.input.Value())
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			m.err = fmt.Errorf("bulk select: %q is not a row count", raw)
			return m, nil
		}
		m.closeInput()
		m.err = nil
		m.setSnapshot(m.browser.BulkApply(n))
		m.status = fmt.Sprintf("selected first %d rows of this page", min(n, len(m.snapshot.Page.Records)))
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) closeInput() {
	m.applying = false
	m.input.Blur()
}

// step moves relative to the page most recently asked for, so repeated key
// presses keep advancing while a fetch is in flight.
func (m Model) step(delta int) (tea.Model, tea.Cmd) {
	base := m.snapshot.Page.Index
	if m.snapshot.Loading {
		base = m.snapshot.RequestedIndex
	}

	target := base + delta
	if target < 0 || (m.snapshot.PageCount > 0 && target >= m.snapshot.PageCount) {
		return m, nil
	}

	cmd := m.navigate(target)
	m.snapshot = m.browser.Snapshot()
	m.err = nil
	m.status = ""
	m.logger.Debug("page requested", "page", target)
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) cursorID() (domain.ArtworkID, bool) {
	records := m.snapshot.Page.Records
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(records) {
		return 0, false
	}
	return records[cursor].ID, true
}

func (m *Model) setSnapshot(snapshot application.Snapshot) {
	m.snapshot = snapshot
	m.table.SetRows(rows(snapshot))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{
		m.styles.title.Render("Art Institute of Chicago: Artworks"),
		m.styles.header.Render(page.PageLine(m.snapshot)),
		m.styles.frame.Render(m.table.View()),
		m.styles.selected.Render(page.SelectedLine(m.snapshot.SelectedCount)),
	}

	switch {
	case m.applying:
		lines = append(lines, m.styles.prompt.Render(m.input.View()))
	case m.err != nil:
		lines = append(lines, m.styles.err.Render("error: "+m.err.Error()))
	case m.snapshot.Loading:
		lines = append(lines, fmt.Sprintf("%s loading page %d...", m.spinner.View(), m.snapshot.RequestedIndex+1))
	case m.status != "":
		lines = append(lines, m.styles.status.Render(m.status))
	default:
		lines = append(lines, "")
	}

	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Snapshot is the session state as last shown.
func (m Model) Snapshot() application.Snapshot {
	return m.snapshot
}

func (m Model) Err() error {
	return m.err
}

func columns() []table.Column {
	return []table.Column{
		{Title: "", Width: 3},
		{Title: "ID", Width: 7},
		{Title: "Title", Width: 36},
		{Title: "Artist", Width: 24},
		{Title: "Place", Width: 14},
		{Title: "Dates", Width: 11},
	}
}

func rows(snapshot application.Snapshot) []table.Row {
	out := make([]table.Row, 0, len(snapshot.Page.Records))
	for _, artwork := range snapshot.Page.Records {
		mark := "[ ]"
		if snapshot.IsChecked(artwork.ID) {
			mark = "[x]"
		}
		out = append(out, table.Row{
			mark,
			strconv.FormatInt(int64(artwork.ID), 10),
			page.TitleOrUntitled(artwork.Title),
			artwork.ArtistLine(),
			artwork.PlaceOfOrigin,
			artwork.DateRange(),
		})
	}
	return out
}
