package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/logger"
	"github.com/five82/hoard/internal/prefs"
	"github.com/five82/hoard/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewSetup View = iota
	ViewList
	ViewLogs
	ViewCollections
)

const (
	fieldURL = iota
	fieldKey
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *session.Store
	Logger    logger.Logger
	PageSize  int
	ThemeName string
	PrefsPath string
	// ServerURL prefills the setup form when the store has no origin yet.
	ServerURL string
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
	Now       func() time.Time
}

// flash is a transient footer message.
type flash struct {
	text  string
	isErr bool
	at    time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *session.Store
	log       logger.Logger
	prefsPath string
	pageSize  int
	copy      func(string) error
	now       func() time.Time

	// UI state
	theme  Theme
	keys   keyMap
	view   View
	width  int
	height int
	ready  bool

	// Setup form
	inputs     [2]textinput.Model
	setupFocus int
	validating bool
	setupErr   string

	// Bookmark list
	page     hoarder.BookmarkPage
	pager    pager
	filter   Filter
	scope    scope
	selected int
	loading  bool
	seq      int

	// Typing fuzzy-filters the page; enter runs a server search
	searchInput textinput.Model
	searching   bool
	query       string

	// List and tag picker
	collections  []scope
	collSelected int
	collLoading  bool

	// Delete confirmation
	confirmDeleteID string

	// Diagnostics pane
	logViewport viewport.Model
	logLines    []string
	logReadAt   time.Time

	showHelp bool
	status   flash
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		log:       log,
		prefsPath: prefsPath,
		pageSize:  pageSize,
		copy:      copyFn,
		now:       now,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		view:      ViewSetup,
	}
	m.initInputs(opts.ServerURL)
	return m
}

func (m *Model) initInputs(serverURL string) {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://hoarder.example.com"
	urlInput.Prompt = "Server  "
	urlInput.CharLimit = 2048
	if origin := m.store.Origin(); origin != "" {
		urlInput.SetValue(origin)
	} else {
		urlInput.SetValue(strings.TrimSpace(serverURL))
	}

	keyInput := textinput.New()
	keyInput.Placeholder = "API key"
	keyInput.Prompt = "API key "
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'
	keyInput.CharLimit = 512

	m.inputs = [2]textinput.Model{urlInput, keyInput}
	m.setupFocus = fieldURL
	if urlInput.Value() != "" {
		m.setupFocus = fieldKey
	}
	m.focusSetupField()

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "filter this page, enter searches the server"
	m.searchInput = search
}

func (m *Model) focusSetupField() {
	for i := range m.inputs {
		if i == m.setupFocus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(time.Second))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.contentHeight())
		}
		m.ready = true
		m.resizeLogViewport()
		m.clampSelection()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case validatedMsg:
		return m.handleValidated(msg)

	case pageMsg:
		return m.handlePage(msg)

	case collectionsMsg:
		return m.handleCollections(msg)

	case updatedMsg:
		m.handleUpdated(msg)
		return m, nil

	case deletedMsg:
		m.handleDeleted(msg)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setError("Copy failed: " + msg.err.Error())
		} else {
			m.setStatus("Copied " + truncate(msg.url, 60))
		}
		return m, nil

	case logsMsg:
		if msg.err != nil {
			m.log.Warn("read diagnostics log", logger.Error(msg.err))
			return m, nil
		}
		m.logLines = msg.lines
		m.updateLogViewport()
		return m, nil
	}

	if m.view == ViewSetup {
		return m.updateFocusedInput(msg)
	}
	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewSetup:
		return m.renderSetup()
	case ViewLogs:
		return m.renderLogs()
	case ViewCollections:
		return m.renderCollections()
	default:
		return m.renderList()
	}
}

// contentHeight is the room left after header, command bar and footer.
func (m Model) contentHeight() int {
	return max(m.height-3, 1)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.view == ViewSetup {
		return m.handleSetupKey(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.confirmDeleteID != "" {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Setup):
		m.view = ViewSetup
		m.setupErr = ""
		m.inputs[fieldKey].SetValue("")
		m.setupFocus = fieldKey
		m.focusSetupField()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ViewLogs):
		if m.view == ViewLogs {
			m.view = ViewList
			return m, nil
		}
		m.view = ViewLogs
		m.logReadAt = m.now()
		return m, readLogsCmd(m.log.Path())
	case key.Matches(msg, m.keys.Browse):
		if m.view == ViewCollections {
			m.view = ViewList
			return m, nil
		}
		m.view = ViewCollections
		m.collLoading = true
		return m, loadCollectionsCmd(m.ctx, m.store)
	case key.Matches(msg, m.keys.Escape):
		if m.view == ViewLogs || m.view == ViewCollections {
			m.view = ViewList
			return m, nil
		}
		if m.query != "" {
			m.query = ""
			m.searchInput.SetValue("")
			m.clampSelection()
			return m, nil
		}
		if m.scope.kind != scopeFilter {
			m.scope = scope{}
			return m.fetch(pager{})
		}
		return m, nil
	}

	if m.view == ViewCollections {
		return m.handleCollectionsKey(msg)
	}
	if m.view == ViewLogs {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m.handleListKey(msg)
}

// handleSetupKey drives the server/API key form. Printable keys go to the
// focused input, so global single-letter bindings are not active here.
func (m Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.validating {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.store.State() == session.Authenticated {
			m.view = ViewList
		}
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.setupFocus = (m.setupFocus + 1) % len(m.inputs)
		m.focusSetupField()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.setupFocus == fieldURL {
			m.setupFocus = fieldKey
			m.focusSetupField()
			return m, nil
		}
		return m.submitSetup()
	}
	return m.updateFocusedInput(msg)
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.setupFocus], cmd = m.inputs[m.setupFocus].Update(msg)
	return m, cmd
}

// submitSetup stores the server URL and starts validating the key. The key
// is only kept by the store once the server accepts it.
func (m Model) submitSetup() (tea.Model, tea.Cmd) {
	apiKey := strings.TrimSpace(m.inputs[fieldKey].Value())
	if apiKey == "" {
		m.setupErr = "Enter an API key"
		return m, nil
	}
	origin, err := m.store.SetOrigin(m.inputs[fieldURL].Value())
	if err != nil {
		m.setupErr = err.Error()
		m.setupFocus = fieldURL
		m.focusSetupField()
		return m, nil
	}
	m.inputs[fieldURL].SetValue(origin)
	m.setupErr = ""
	m.validating = true
	return m, validateCmd(m.ctx, m.store, origin, apiKey)
}

func (m Model) handleValidated(msg validatedMsg) (tea.Model, tea.Cmd) {
	m.validating = false
	m.inputs[fieldKey].SetValue("")
	if msg.err != nil {
		m.setupErr = describeError(msg.err)
		return m, nil
	}
	m.savePrefs()
	m.view = ViewList
	m.inputs[fieldKey].Blur()
	m.inputs[fieldURL].Blur()
	m.setStatus("Connected to " + msg.origin)
	m.pager = pager{}
	return m.fetch(pager{})
}

// fetch requests the page target points at in the current scope. Results
// from superseded requests are dropped by sequence number.
func (m Model) fetch(target pager) (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	load := m.scope.pageLoader(m.store, m.filter, target.current, m.pageSize)
	return m, fetchPageCmd(m.ctx, m.seq, target, load)
}

func (m Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.setError(describeError(msg.err))
		if errors.Is(msg.err, session.ErrNotFound) {
			m.view = ViewSetup
			m.setupErr = "Enter an API key for " + m.store.Origin()
			m.setupFocus = fieldKey
			m.focusSetupField()
		}
		return m, nil
	}
	m.page = msg.page
	m.pager = msg.pager.Loaded(msg.page)
	m.selected = 0
	m.clampSelection()
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.visible()

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(items)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(len(items)-1, 0)

	case key.Matches(msg, m.keys.NextPage):
		target, ok := m.pager.Forward()
		if !ok {
			m.setStatus("No more bookmarks")
			return m, nil
		}
		return m.fetch(target)
	case key.Matches(msg, m.keys.PrevPage):
		target, ok := m.pager.Back()
		if !ok {
			m.setStatus("Already on the first page")
			return m, nil
		}
		return m.fetch(target)
	case key.Matches(msg, m.keys.Reload):
		return m.fetch(m.pager)
	case key.Matches(msg, m.keys.CycleFilter):
		m.filter = m.filter.Next()
		m.scope = scope{}
		m.query = ""
		m.searchInput.SetValue("")
		return m.fetch(pager{})
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleFavourite):
		if b, ok := m.selectedBookmark(); ok {
			return m, setFavouritedCmd(m.ctx, m.store, b.ID, !b.Favourited)
		}
	case key.Matches(msg, m.keys.ToggleArchive):
		if b, ok := m.selectedBookmark(); ok {
			return m, setArchivedCmd(m.ctx, m.store, b.ID, !b.Archived)
		}
	case key.Matches(msg, m.keys.Delete):
		if b, ok := m.selectedBookmark(); ok {
			m.confirmDeleteID = b.ID
		}
	case key.Matches(msg, m.keys.CopyURL):
		if b, ok := m.selectedBookmark(); ok {
			return m, copyCmd(m.copy, b.URL)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.query = ""
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.submitSearch()
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.query = strings.TrimSpace(m.searchInput.Value())
	m.selected = 0
	return m, cmd
}

// submitSearch runs the typed text as a server search from its first page.
// Submitting an empty search returns to the filtered listing.
func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.searchInput.Value())
	m.searching = false
	m.searchInput.Blur()
	m.searchInput.SetValue("")
	m.query = ""
	if text == "" {
		if m.scope.kind != scopeSearch {
			m.clampSelection()
			return m, nil
		}
		m.scope = scope{}
		return m.fetch(pager{})
	}
	m.scope = scope{kind: scopeSearch, name: text}
	return m.fetch(pager{})
}

func (m Model) handleCollections(msg collectionsMsg) (tea.Model, tea.Cmd) {
	m.collLoading = false
	if msg.err != nil {
		m.setError(describeError(msg.err))
		if m.view == ViewCollections {
			m.view = ViewList
		}
		return m, nil
	}
	m.collections = msg.entries
	m.collSelected = min(m.collSelected, max(len(m.collections)-1, 0))
	return m, nil
}

func (m Model) handleCollectionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.collSelected < len(m.collections)-1 {
			m.collSelected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.collSelected > 0 {
			m.collSelected--
		}
	case key.Matches(msg, m.keys.Top):
		m.collSelected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.collSelected = max(len(m.collections)-1, 0)
	case key.Matches(msg, m.keys.Confirm):
		if m.collSelected >= len(m.collections) {
			return m, nil
		}
		m.scope = m.collections[m.collSelected]
		m.query = ""
		m.searchInput.SetValue("")
		m.view = ViewList
		return m.fetch(pager{})
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmDeleteID
	m.confirmDeleteID = ""
	if key.Matches(msg, m.keys.ConfirmYes) {
		return m, deleteCmd(m.ctx, m.store, id)
	}
	m.setStatus("Delete cancelled")
	return m, nil
}

func (m *Model) handleUpdated(msg updatedMsg) {
	if msg.err != nil {
		m.setError(describeError(msg.err))
		return
	}
	for i := range m.page.Bookmarks {
		if m.page.Bookmarks[i].ID == msg.bookmark.ID {
			m.page.Bookmarks[i] = msg.bookmark
			break
		}
	}
	m.setStatus(msg.verb + " " + truncate(titleOf(msg.bookmark), 50))
}

func (m *Model) handleDeleted(msg deletedMsg) {
	if msg.err != nil {
		m.setError(describeError(msg.err))
		return
	}
	kept := m.page.Bookmarks[:0]
	for _, b := range m.page.Bookmarks {
		if b.ID != msg.id {
			kept = append(kept, b)
		}
	}
	m.page.Bookmarks = kept
	m.clampSelection()
	m.setStatus("Deleted")
}

// handleTick expires the flash message and refreshes the log pane.
func (m Model) handleTick(t time.Time) (tea.Model, tea.Cmd) {
	if m.status.text != "" && t.Sub(m.status.at) > StatusMessageTTL {
		m.status = flash{}
	}
	cmds := []tea.Cmd{tickCmd(time.Second)}
	if m.view == ViewLogs && t.Sub(m.logReadAt) >= LogRefreshInterval {
		m.logReadAt = t
		cmds = append(cmds, readLogsCmd(m.log.Path()))
	}
	return m, tea.Batch(cmds...)
}

// visible returns the page bookmarks after the fuzzy search.
func (m Model) visible() []hoarder.Bookmark {
	return fuzzyFilter(m.page.Bookmarks, m.query)
}

func (m Model) selectedBookmark() (hoarder.Bookmark, bool) {
	items := m.visible()
	if m.selected < 0 || m.selected >= len(items) {
		return hoarder.Bookmark{}, false
	}
	return items[m.selected], true
}

func (m *Model) clampSelection() {
	n := len(m.visible())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, ServerURL: m.store.Origin()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save prefs", logger.Error(err))
	}
}

func (m *Model) setStatus(text string) {
	m.status = flash{text: text, at: m.now()}
}

func (m *Model) setError(text string) {
	m.status = flash{text: text, isErr: true, at: m.now()}
}

// describeError turns core errors into the text shown to the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, session.ErrNoOrigin):
		return "Set a server URL first"
	case errors.Is(err, session.ErrNotFound):
		return "No API key for this server"
	}
	if apiErr, ok := hoarder.AsAPIError(err); ok && strings.TrimSpace(apiErr.Body) == "" {
		return "API error: HTTP " + strconv.Itoa(apiErr.Status)
	}
	return err.Error()
}

func titleOf(b hoarder.Bookmark) string {
	if strings.TrimSpace(b.Title) != "" {
		return b.Title
	}
	return b.URL
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
