package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// logRelay is the log destination of every command. While a spinner owns the
// terminal, records are held back and written once the spinner has cleared
// its line.
type logRelay struct {
	mu   sync.Mutex
	out  io.Writer
	held bytes.Buffer
	hold bool
}

func newLogRelay(out io.Writer) *logRelay {
	return &logRelay{out: out}
}

func (r *logRelay) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hold {
		return r.held.Write(p)
	}
	return r.out.Write(p)
}

func (r *logRelay) pause() {
	r.mu.Lock()
	r.hold = true
	r.mu.Unlock()
}

// resume writes everything held since pause.
func (r *logRelay) resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hold = false
	if r.held.Len() == 0 {
		return nil
	}
	_, err := r.held.WriteTo(r.out)
	r.held.Reset()
	return err
}

// heldLines counts records waiting for resume.
func (r *logRelay) heldLines() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Count(r.held.Bytes(), []byte{'\n'})
}

type fetchDoneMsg struct {
	err error
}

type fetchSpinnerModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	relay   *logRelay
	fetch   tea.Cmd
	err     error
	done    bool
}

func (m fetchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m fetchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m fetchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, time.Since(m.started).Truncate(100*time.Millisecond))
	if n := m.relay.heldLines(); n > 0 {
		line += fmt.Sprintf(" (%d log lines pending)", n)
	}
	return line
}

// runFetchSpinner shows label on output until fetch returns. Logs routed
// through relay are held for the duration. fetch runs while the caller is
// blocked, so it may touch state owned by the caller.
func runFetchSpinner(ctx context.Context, output io.Writer, relay *logRelay, label string, fetch func(context.Context) error) error {
	model := fetchSpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		label:   label,
		started: time.Now(),
		relay:   relay,
		fetch: func() tea.Msg {
			return fetchDoneMsg{err: fetch(ctx)}
		},
	}

	relay.pause()
	finalModel, err := tea.NewProgram(
		model,
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	).Run()
	if flushErr := relay.resume(); err == nil && flushErr != nil {
		err = fmt.Errorf("flush logs: %w", flushErr)
	}
	if err != nil {
		return err
	}

	result, ok := finalModel.(fetchSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
