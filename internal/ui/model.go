package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peoplesearch/internal/domain"
	"peoplesearch/internal/observable"
	"peoplesearch/internal/ui/views"
)

// Title is shown at the top of the screen
const Title = "People"

// SearchStore is the state holder the screen renders
type SearchStore interface {
	SetQuery(text string)
	SubscribeQuery() *observable.Subscription[string]
	SubscribeResults() *observable.Subscription[[]domain.Person]
	SubscribeBusy() *observable.Subscription[bool]
}

// Model represents the UI state
type Model struct {
	store      SearchStore
	querySub   *observable.Subscription[string]
	resultsSub *observable.Subscription[[]domain.Person]
	busySub    *observable.Subscription[bool]

	// Latest values observed from the store
	query   string
	results []domain.Person
	busy    bool

	input    textinput.Model
	spinner  spinner.Model
	list     viewport.Model
	help     help.Model
	keys     keyMap
	styles   *views.Styles
	renderer *views.ResultsRenderer

	width  int
	height int
	err    error
}

// NewModel creates the search screen and subscribes it to store.
// Call Close when the program exits.
func NewModel(store SearchStore) *Model {
	styles := views.NewStyles()
	keys := newKeyMap()

	input := textinput.New()
	input.Placeholder = "Search by name or initials"
	input.Prompt = styles.Prompt.Render("> ")
	input.PlaceholderStyle = styles.Placeholder
	input.Focus()

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Spinner),
	)

	list := viewport.New(0, 0)
	list.KeyMap = viewport.KeyMap{
		Up:       keys.Up,
		Down:     keys.Down,
		PageUp:   keys.PageUp,
		PageDown: keys.PageDown,
	}

	return &Model{
		store:      store,
		querySub:   store.SubscribeQuery(),
		resultsSub: store.SubscribeResults(),
		busySub:    store.SubscribeBusy(),
		input:      input,
		spinner:    spin,
		list:       list,
		help:       help.New(),
		keys:       keys,
		styles:     styles,
		renderer:   views.NewResultsRenderer(styles),
	}
}

// Close ends the model's store subscriptions
func (m *Model) Close() {
	m.querySub.Unsubscribe()
	m.resultsSub.Unsubscribe()
	m.busySub.Unsubscribe()
}

// Init starts listening to the store
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listen(m.querySub, wrapQuery),
		listen(m.resultsSub, wrapResults),
		listen(m.busySub, wrapBusy),
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-4, 1)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case queryMsg:
		// The field owns its text; the store's query only drives the status line
		m.query = string(msg)
		return m, listen(m.querySub, wrapQuery)

	case resultsMsg:
		m.results = msg
		m.refreshList()
		m.list.GotoTop()
		return m, listen(m.resultsSub, wrapResults)

	case busyMsg:
		m.busy = bool(msg)
		cmds := []tea.Cmd{listen(m.busySub, wrapBusy)}
		if m.busy {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		// Let the spinner stop once nothing is pending
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeClosedMsg:
		return m, tea.Quit

	case pagerClosedMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.store.SetQuery("")
		return m, nil

	case key.Matches(msg, m.keys.Pager):
		m.err = nil
		pager := newPagerCommand(m.renderer.Plain(m.results))
		return m, tea.Exec(pager, func(err error) tea.Msg {
			return pagerClosedMsg{err: err}
		})

	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.store.SetQuery(after)
	}
	return m, cmd
}

// resize gives the list whatever height the header and footer leave
func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	header := lipgloss.Height(m.headerView())
	footer := lipgloss.Height(m.footerView())
	m.list.Width = m.width
	m.list.Height = max(m.height-header-footer, 1)
	m.refreshList()
}

func (m *Model) refreshList() {
	m.list.SetContent(m.renderer.Render(m.results, m.query))
}

// View renders the screen
func (m *Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.list.View(),
		m.footerView(),
	)
}

func (m *Model) headerView() string {
	title := m.styles.Title.Render(Title)
	if m.busy {
		title += "  " + m.spinner.View() + m.styles.Busy.Render("Searching…")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		m.styles.Status.Render(m.statusLine()),
	)
}

func (m *Model) footerView() string {
	lines := []string{}
	if m.err != nil {
		lines = append(lines, m.styles.Error.Render(fmt.Sprintf("Pager error: %v", m.err)))
	}
	lines = append(lines, m.styles.Help.Render(m.help.View(m.keys)))
	return strings.Join(lines, "\n")
}

// statusLine describes the result list, which may lag the query while busy
func (m *Model) statusLine() string {
	n := len(m.results)
	if strings.TrimSpace(m.query) == "" {
		return fmt.Sprintf("%d %s", n, plural(n, "person", "people"))
	}
	if n == 0 {
		return fmt.Sprintf("No matches for %q", m.query)
	}
	return fmt.Sprintf("%d %s for %q", n, plural(n, "match", "matches"), m.query)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
