package dashboard

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/smileynet/pantry/internal/api"
	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/record"
	"github.com/smileynet/pantry/internal/table"
)

// catalogTableID identifies the catalog table in intents.
const catalogTableID = "catalog"

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// headerHeight covers the tab bar and the status line.
const headerHeight = 2

// Option configures a Model.
type Option func(*options)

type options struct {
	ctx      context.Context
	logger   *zap.Logger
	pageSize int
}

// WithContext sets the context used for queries and mutations.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPageSize sets the rows per table page.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// subscriptions collects unsubscribe functions registered from commands.
// Functions added after close run immediately.
type subscriptions struct {
	mu     sync.Mutex
	fns    []func()
	closed bool
}

func (s *subscriptions) add(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
}

func (s *subscriptions) close() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.closed = true
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Model is the root Bubble Tea model for the dashboard TUI.
// It shows one editor tab per kind plus the catalog tab.
type Model struct {
	api    *api.API
	ctx    context.Context
	cancel context.CancelFunc
	bridge *Bridge
	subs   *subscriptions
	logger *zap.Logger

	kinds    []record.Kind
	tab      int // index into kinds; len(kinds) is the catalog
	editors  map[record.Kind]table.Model[record.Record]
	catalog  table.Model[catalogRow]
	records  map[record.Kind][]record.Record
	tags     map[record.Kind][]record.Tag
	selected string // catalog key of the row shown in the detail pane

	status    string
	statusErr bool
	pending   int // mutations in flight

	width   int
	height  int
	keys    globalKeys
	spinner spinner.Model
	help    help.Model
}

// NewModel creates a dashboard over every kind registered in a.
// Call Close when the program exits.
func NewModel(a *api.API, opts ...Option) Model {
	o := options{ctx: context.Background(), logger: zap.NewNop(), pageSize: table.DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(o.ctx)

	kinds := a.Kinds()
	editors := make(map[record.Kind]table.Model[record.Record], len(kinds))
	for _, kind := range kinds {
		editors[kind] = table.New(string(kind), editorColumns(kind),
			table.WithPageSize(o.pageSize),
			table.WithValidator(validateCell),
			table.WithEmptyText("No "+strings.ToLower(kind.Plural())),
		)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		api:     a,
		ctx:     ctx,
		cancel:  cancel,
		bridge:  NewBridge(),
		subs:    &subscriptions{},
		logger:  o.logger,
		kinds:   kinds,
		editors: editors,
		catalog: table.New(catalogTableID, catalogColumns(),
			table.WithPageSize(o.pageSize),
			table.WithReadOnly(),
			table.WithEmptyText("Nothing in the catalog"),
		),
		records: make(map[record.Kind][]record.Record),
		tags:    make(map[record.Kind][]record.Tag),
		keys:    GlobalKeyMap(),
		spinner: s,
		help:    help.New(),
	}
}

// Init subscribes to every kind's tags and records and starts listening
// for their results.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.Listen(), m.subscribe())
}

// Close cancels outstanding work, drops every subscription and stops the
// bridge. It is safe to call more than once.
func (m Model) Close() {
	m.cancel()
	m.subs.close()
	m.bridge.Close()
}

// subscribe registers the cache subscriptions. Initial fetches run inside
// the command, so they never block Update.
func (m Model) subscribe() tea.Cmd {
	a, ctx, b, subs := m.api, m.ctx, m.bridge, m.subs
	kinds := m.kinds
	return func() tea.Msg {
		for _, kind := range kinds {
			res, ok := a.Resource(kind)
			if !ok {
				continue
			}
			subs.add(res.Tags.Subscribe(ctx, a.Cache, api.Void{}, func(tags []record.Tag, err error) {
				b.Send(TagsMsg{Kind: kind, Tags: tags, Err: err})
			}))
			subs.add(res.List.Subscribe(ctx, a.Cache, api.Void{}, func(rs []record.Record, err error) {
				b.Send(RecordsMsg{Kind: kind, Records: rs, Err: err})
			}))
		}
		return nil
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if bridged(msg) {
		cmds = append(cmds, m.bridge.Listen())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TagsMsg:
		m = m.applyTags(msg)
		return m, tea.Batch(cmds...)

	case RecordsMsg:
		m = m.applyRecords(msg)
		return m, tea.Batch(cmds...)

	case MutationDoneMsg:
		m.pending--
		if msg.Err != nil {
			m.logger.Warn("mutation failed", zap.String("endpoint", msg.Endpoint), zap.Error(msg.Err))
			m = m.setError(msg.Err.Error())
		} else {
			m = m.setStatus(msg.Summary)
		}
		return m, nil

	case table.CreateMsg:
		return m.create(msg)
	case table.UpdateMsg:
		return m.update(msg)
	case table.DeleteMsg:
		return m.delete(msg)
	case table.ResetMsg:
		return m.reset(msg)
	case table.RowSelectedMsg:
		if msg.Table == catalogTableID {
			m.selected = msg.RowID
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Anything else (text input blinks) belongs to the active table.
	return m.updateActive(msg)
}

// handleKey routes keys: the active table gets everything while busy,
// otherwise global keys take precedence.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.activeBusy() {
		return m.updateActive(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.NextTab):
		m.tab = (m.tab + 1) % m.tabCount()
		return m, nil
	case key.Matches(msg, k.PrevTab):
		m.tab = (m.tab - 1 + m.tabCount()) % m.tabCount()
		return m, nil
	case key.Matches(msg, k.GoTo):
		if n := int(msg.Runes[0] - '1'); n < m.tabCount() {
			m.tab = n
		}
		return m, nil
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m.updateActive(msg)
}

func (m Model) tabCount() int { return len(m.kinds) + 1 }

func (m Model) onCatalog() bool { return m.tab == len(m.kinds) }

// activeKind returns the kind of the active editor tab.
func (m Model) activeKind() (record.Kind, bool) {
	if m.onCatalog() {
		return "", false
	}
	return m.kinds[m.tab], true
}

func (m Model) activeBusy() bool {
	if kind, ok := m.activeKind(); ok {
		return m.editors[kind].Busy()
	}
	return m.catalog.Busy()
}

// updateActive forwards msg to the active table.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if kind, ok := m.activeKind(); ok {
		m.editors = maps.Clone(m.editors)
		m.editors[kind], cmd = m.editors[kind].Update(msg)
		return m, cmd
	}
	m.catalog, cmd = m.catalog.Update(msg)
	return m, cmd
}

func (m Model) loading() bool {
	for _, e := range m.editors {
		if e.Loading() {
			return true
		}
	}
	return false
}

func (m Model) applyTags(msg TagsMsg) Model {
	if msg.Err != nil {
		m.logger.Warn("tag query failed", zap.String("kind", string(msg.Kind)), zap.Error(msg.Err))
		return m.setError(fmt.Sprintf("loading %s tags: %v", msg.Kind, msg.Err))
	}
	m.tags = maps.Clone(m.tags)
	m.tags[msg.Kind] = msg.Tags
	if e, ok := m.editors[msg.Kind]; ok {
		m.editors = maps.Clone(m.editors)
		m.editors[msg.Kind] = e.SetChoices(colTags, choices(msg.Tags))
	}
	return m.refreshCatalog()
}

func (m Model) applyRecords(msg RecordsMsg) Model {
	if msg.Err != nil {
		m.logger.Warn("record query failed", zap.String("kind", string(msg.Kind)), zap.Error(msg.Err))
		m = m.setError(fmt.Sprintf("loading %s: %v", strings.ToLower(msg.Kind.Plural()), msg.Err))
		if msg.Records == nil {
			return m
		}
	}
	m.logger.Debug("records", zap.String("kind", string(msg.Kind)), zap.Int("count", len(msg.Records)))
	m.records = maps.Clone(m.records)
	m.records[msg.Kind] = msg.Records
	if e, ok := m.editors[msg.Kind]; ok {
		m.editors = maps.Clone(m.editors)
		m.editors[msg.Kind] = e.SetRows(msg.Records)
	}
	return m.refreshCatalog()
}

func (m Model) refreshCatalog() Model {
	m.catalog = m.catalog.SetRows(catalogRows(m.kinds, m.records, m.tags))
	return m
}

// Selected returns the record shown in the catalog detail pane.
func (m Model) Selected() (record.Record, bool) {
	if m.selected == "" {
		return record.Record{}, false
	}
	for _, kind := range m.kinds {
		for _, r := range m.records[kind] {
			if catalogKey(kind, r.ID) == m.selected && !r.Archived {
				return r, true
			}
		}
	}
	return record.Record{}, false
}

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

func (m Model) setStatus(s string) Model {
	m.status, m.statusErr = s, false
	return m
}

func (m Model) setError(s string) Model {
	m.status, m.statusErr = s, true
	return m
}

// View renders the tab bar, the active tab, the status line and help.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	contentHeight := m.height - headerHeight - borderChrome - helpBarHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var body string
	if kind, ok := m.activeKind(); ok {
		style := FocusedBorder().
			Width(m.width - borderChrome).
			Height(contentHeight)
		body = style.Render(m.viewEditor(kind))
	} else {
		body = m.viewCatalog(contentHeight)
	}

	busy := m.activeBusy()
	var keys help.KeyMap
	if kind, ok := m.activeKind(); ok {
		keys = HelpBindings(m.editors[kind].HelpKeys(), busy)
	} else {
		keys = HelpBindings(m.catalog.HelpKeys(), busy)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewTabs(),
		body,
		m.viewStatus(),
		m.help.View(keys),
	)
}

func (m Model) viewTabs() string {
	names := make([]string, 0, m.tabCount())
	for _, kind := range m.kinds {
		names = append(names, kind.Plural())
	}
	names = append(names, "Catalog")

	parts := make([]string, len(names))
	for i, name := range names {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if i == m.tab {
			parts[i] = activeTab.Render(label)
		} else {
			parts[i] = inactiveTab.Render(label)
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) viewEditor(kind record.Kind) string {
	e := m.editors[kind]
	if e.Loading() {
		return fmt.Sprintf("%s Loading %s...", m.spinner.View(), strings.ToLower(kind.Plural()))
	}
	return e.View()
}

func (m Model) viewCatalog(contentHeight int) string {
	leftWidth, rightWidth := PaneWidths(m.width)
	leftStyle := FocusedBorder().
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle := UnfocusedBorder().
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	left := m.catalog.View()
	if m.loading() {
		left = m.spinner.View() + " Loading catalog..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Render(left),
		rightStyle.Render(m.viewDetail()),
	)
}

// viewDetail renders the card of the selected catalog row. Tag names are
// resolved from the record's own kind.
func (m Model) viewDetail() string {
	r, ok := m.Selected()
	if !ok {
		return mutedText.Render("Select a row and press enter")
	}
	var b strings.Builder
	b.WriteString(titleText.Render(r.Name))
	b.WriteString("\n" + mutedText.Render(r.Kind.Title()))
	b.WriteString("\n\n" + r.Description)
	names := catalog.Names(m.tags[r.Kind], r.Tags)
	b.WriteString("\n\nTags: " + strings.Join(names, ", "))
	return b.String()
}

func (m Model) viewStatus() string {
	switch {
	case m.pending > 0:
		return mutedText.Render("Saving...")
	case m.status == "":
		return ""
	case m.statusErr:
		return errorText.Render("Error: " + m.status)
	default:
		return okText.Render(m.status)
	}
}
