package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
	"gitlab.com/tinyland/lab/host-pulse/pkg/layout"
	"gitlab.com/tinyland/lab/host-pulse/pkg/runinfo"
	"gitlab.com/tinyland/lab/host-pulse/pkg/theme"
)

// Table headers.
var tableHeaders = []string{"Description", "Value"}

// chromeLines counts the non-table lines in View: title, status, hints.
const chromeLines = 3

// cellPadding is the horizontal padding the table cell style adds per column.
const cellPadding = 2

// Options wires the model to its collaborators.
type Options struct {
	Metrics      MetricsSource
	Prober       Prober
	ProbeTimeout time.Duration
	Hostname     func() (string, error)
	Run          *runinfo.Info
	Styles       theme.Styles
	Logger       *slog.Logger
}

// Model is the root Bubbletea model.
type Model struct {
	ctx    context.Context
	opts   Options
	styles theme.Styles
	log    *slog.Logger

	state State
	table table.Model

	width, height int
	populated     bool
	note          string
	quitting      bool

	clockUpdates  int
	probesStarted int
}

// NewModel builds the model. ctx bounds every background command; cancel it
// to abort an in-flight probe on shutdown.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Hostname == nil {
		opts.Hostname = os.Hostname
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = reachability.DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	t := table.New(
		table.WithColumns(columnsFor(layout.FitContent(measureAll(tableHeaders), layout.ColumnPadding))),
		table.WithFocused(true),
		table.WithStyles(opts.Styles.Table),
	)

	return Model{
		ctx:    ctx,
		opts:   opts,
		styles: opts.Styles,
		log:    opts.Logger,
		table:  t,
	}
}

// Init starts the one-time metrics collection and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		CollectCmd(m.ctx, m.opts.Metrics),
		TickCmd(TickInterval),
	)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case TickEvent:
		return m.handleTick(msg)

	case ReachabilityEvent:
		m.handleReachability(msg.Result)
		return m, nil

	case MetricsEvent:
		m.populateTable(msg)
		return m, nil
	}
	return m, nil
}

// handleTick refreshes the clock, host name and uptime, and starts a probe
// unless one is already in flight.
func (m Model) handleTick(ev TickEvent) (tea.Model, tea.Cmd) {
	m.state.Now = ev.Time
	m.clockUpdates++

	host, err := m.opts.Hostname()
	if err != nil {
		m.log.Debug("hostname lookup failed", "error", err)
		host = ""
	}
	m.state.Host = host

	if m.opts.Run != nil {
		m.state.Running = m.opts.Run.Running()
	}

	cmds := []tea.Cmd{TickCmd(TickInterval)}
	if !m.state.Probing && m.opts.Prober != nil {
		m.state.Probing = true
		m.probesStarted++
		cmds = append(cmds, ProbeCmd(m.ctx, m.opts.Prober, m.opts.ProbeTimeout))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleReachability(res reachability.Result) {
	prev, checked := m.state.Reach, m.state.Checked
	m.state.Probing = false
	m.state.Checked = true
	m.state.Reach = res.Status
	m.state.LastCode = res.Code

	if res.Err != nil {
		m.log.Debug("reachability probe failed",
			"error", res.Err,
			"failure", res.Failure.String(),
			"code", res.Code,
			"latency", res.Latency,
		)
	}
	if !checked || prev != res.Status {
		m.log.Info("reachability changed", "status", res.Status.String(), "code", res.Code)
	}
}

// populateTable fills the table from the first MetricsEvent only.
func (m *Model) populateTable(ev MetricsEvent) {
	if m.populated {
		return
	}
	m.populated = true

	if ev.Err != nil {
		m.note = "partial data: " + collectors.Classify(ev.Err).String()
		m.log.Warn("metrics collection incomplete", "error", ev.Err)
	}

	rows := make([]table.Row, len(ev.Rows))
	for i, r := range ev.Rows {
		rows[i] = table.Row{r.Label, r.Value}
	}
	m.table.SetRows(rows)
	m.resizeTable()
	m.log.Info("metrics table populated", "rows", len(rows))
}

// resizeTable sizes the columns: evenly across the window when its width
// is known, otherwise to content.
func (m *Model) resizeTable() {
	var widths []int
	if m.width > 0 {
		// W is the table's content width: the window less each column's cell
		// padding and ColumnPadding. Column widths sum to at least W and the
		// rendered table, cell padding included, spans the whole window.
		inner := m.width - len(tableHeaders)*(cellPadding+layout.ColumnPadding)
		widths = layout.Columns(inner, len(tableHeaders), layout.ColumnPadding)
	} else {
		cells := make([][]string, 0, len(m.table.Rows()))
		for _, r := range m.table.Rows() {
			cells = append(cells, r)
		}
		widths = layout.FitContent(layout.ContentWidths(tableHeaders, cells, ansi.StringWidth), layout.ColumnPadding)
	}
	m.table.SetColumns(columnsFor(widths))
	if m.height > 0 {
		m.table.SetHeight(layout.BodyHeight(m.height, chromeLines, 2))
	}
}

// View renders the title, status line, metrics table and key hints.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing..."
	}

	title := m.styles.Title.Render("host-pulse")
	if m.note != "" {
		title += "  " + m.styles.Note.Render(m.note)
	}

	sections := []string{
		ansi.Truncate(title, m.width, ""),
		ansi.Truncate(m.renderStatus(), m.width, ""),
		m.table.View(),
		m.styles.Hint.Render(ansi.Truncate("↑/↓ scroll  pgup/pgdn page  q quit", m.width, "")),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatus() string {
	line := RenderStatus(m.state)
	reach := m.styles.Disconnected.Render(line.Reachability)
	if m.state.Checked && m.state.Reach == reachability.Connected {
		reach = m.styles.Connected.Render(line.Reachability)
	}
	sep := m.styles.Hint.Render(" │ ")
	return strings.Join([]string{
		m.styles.StatusBar.Render(line.Clock),
		m.styles.StatusBar.Render(line.Host),
		reach,
		m.styles.Hint.Render(line.Uptime),
	}, sep)
}

// --- accessors, mainly for tests ---

// State returns the current status state.
func (m Model) State() State { return m.state }

// TableRows returns the rows currently shown in the metrics table.
func (m Model) TableRows() []table.Row { return m.table.Rows() }

// ColumnWidths returns the current table column widths.
func (m Model) ColumnWidths() []int {
	cols := m.table.Columns()
	ws := make([]int, len(cols))
	for i, c := range cols {
		ws[i] = c.Width
	}
	return ws
}

// ClockUpdates returns how many ticks have refreshed the clock.
func (m Model) ClockUpdates() int { return m.clockUpdates }

// ProbesStarted returns how many reachability probes were launched.
func (m Model) ProbesStarted() int { return m.probesStarted }

// Populated reports whether the metrics table has been filled.
func (m Model) Populated() bool { return m.populated }

// Note returns the table note shown after a partial collection.
func (m Model) Note() string { return m.note }

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool { return m.quitting }

func columnsFor(widths []int) []table.Column {
	cols := make([]table.Column, len(tableHeaders))
	for i, h := range tableHeaders {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	return cols
}

func measureAll(ss []string) []int {
	ws := make([]int, len(ss))
	for i, s := range ss {
		ws[i] = ansi.StringWidth(s)
	}
	return ws
}
