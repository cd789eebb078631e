// Package tui is the interactive two-pane view: a searchable sidebar of note
// titles and a detail pane that shows or edits the selected note.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/aretw0/pocket/pkg/core"
	"github.com/aretw0/pocket/pkg/prefs"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusTitle
	focusBody
)

var errNothingSelected = errors.New("no note selected")

type storeEventMsg struct{ event core.Event }

type eventsClosedMsg struct{}

// Model is the bubbletea model driving a core.Session.
type Model struct {
	ctx     context.Context
	session *core.Session
	prefs   *prefs.Store
	events  <-chan core.Event
	copyFn  func(string) error

	theme  prefs.Theme
	styles Styles
	keys   keyMap
	help   help.Model

	search textinput.Model
	title  textinput.Model
	body   textarea.Model
	focus  focus

	status string
	err    error
	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithEvents makes the view refresh when the store reports a change,
// e.g. the channel returned by core.Store.Watch.
func WithEvents(events <-chan core.Event) Option {
	return func(m *Model) {
		m.events = events
	}
}

// WithClipboard replaces the system clipboard used by the copy shortcut.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copyFn = fn
	}
}

// New creates the model. The theme is read from p once at startup.
func New(ctx context.Context, session *core.Session, p *prefs.Store, opts ...Option) *Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = core.DefaultTitle
	title.CharLimit = core.MaxTitleLength

	body := textarea.New()
	body.Placeholder = "Write something..."
	body.ShowLineNumbers = false
	body.CharLimit = core.MaxBodyLength

	m := &Model{
		ctx:     ctx,
		session: session,
		prefs:   p,
		copyFn:  clipboard.WriteAll,
		keys:    defaultKeyMap(),
		help:    help.New(),
		search:  search,
		title:   title,
		body:    body,
		width:   80,
		height:  24,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.setTheme(p.Theme(ctx))
	m.resize()
	return m
}

// Run starts the full-screen program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan core.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return storeEventMsg{event: e}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case storeEventMsg:
		m.session.Refresh()
		if msg.event.Type == core.EventReload {
			m.status = "reloaded after an external change"
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusTitle, focusBody:
			return m.updateEditor(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.err = "", nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.New):
		if _, err := m.session.BeginCreate(); err != nil {
			m.err = err
			return m, nil
		}
		m.loadDraft()
		return m, m.focusEditor(focusTitle)

	case key.Matches(msg, m.keys.Edit):
		if _, err := m.session.BeginEdit(); err != nil {
			m.err = err
			return m, nil
		}
		m.loadDraft()
		return m, m.focusEditor(focusTitle)

	case key.Matches(msg, m.keys.Delete):
		n, ok := m.session.Current()
		if !ok {
			m.err = errNothingSelected
			return m, nil
		}
		if err := m.session.Delete(m.ctx, n.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("deleted %q", n.Title)

	case key.Matches(msg, m.keys.Down):
		m.session.MoveCursor(1)

	case key.Matches(msg, m.keys.Up):
		m.session.MoveCursor(-1)

	case key.Matches(msg, m.keys.Theme):
		next, err := m.prefs.ToggleTheme(m.ctx)
		if err != nil {
			m.err = err
		}
		m.setTheme(next)

	case key.Matches(msg, m.keys.Copy):
		n, ok := m.session.Current()
		if !ok {
			m.err = errNothingSelected
			return m, nil
		}
		if err := m.copyFn(n.Body); err != nil {
			m.err = fmt.Errorf("copy failed: %w", err)
			return m, nil
		}
		m.status = "copied note body"
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.session.SetQuery("")
		m.search.Blur()
		m.focus = focusList
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.session.SetQuery(m.search.Value())
	return m, cmd
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.session.Cancel()
		m.leaveEditor()
		m.status = "discarded changes"
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.status, m.err = "", nil
		title, body := m.title.Value(), m.body.Value()
		if err := core.CheckLimits(title, body); err != nil {
			m.err = err
			return m, nil
		}
		if err := m.session.SetDraft(title, body); err != nil {
			m.err = err
			return m, nil
		}
		n, err := m.session.Save(m.ctx)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.leaveEditor()
		m.search.SetValue(m.session.Query())
		m.status = fmt.Sprintf("saved %q", n.Title)
		return m, nil

	case key.Matches(msg, m.keys.Switch),
		m.focus == focusTitle && msg.Type == tea.KeyEnter:
		if m.focus == focusTitle {
			return m, m.focusEditor(focusBody)
		}
		return m, m.focusEditor(focusTitle)
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadDraft() {
	d, _ := m.session.Draft()
	m.title.SetValue(d.Title)
	m.body.SetValue(d.Body)
}

func (m *Model) focusEditor(f focus) tea.Cmd {
	m.focus = f
	if f == focusTitle {
		m.body.Blur()
		return m.title.Focus()
	}
	m.title.Blur()
	return m.body.Focus()
}

func (m *Model) leaveEditor() {
	m.title.Blur()
	m.body.Blur()
	m.title.SetValue("")
	m.body.SetValue("")
	m.focus = focusList
}

func (m *Model) setTheme(t prefs.Theme) {
	m.theme = t
	m.styles = NewStyles(t)
}

func (m *Model) sidebarWidth() int {
	return max(20, m.width/3)
}

func (m *Model) detailWidth() int {
	// two panes, each with a border and horizontal padding
	return max(20, m.width-m.sidebarWidth()-8)
}

func (m *Model) paneHeight() int {
	return max(5, m.height-4)
}

func (m *Model) resize() {
	m.search.Width = m.sidebarWidth() - 3
	m.title.Width = m.detailWidth()
	m.body.SetWidth(m.detailWidth())
	m.body.SetHeight(max(3, m.paneHeight()-3))
	m.help.Width = m.width
}

func (m *Model) View() string {
	sidebar := m.styles.Sidebar.
		Width(m.sidebarWidth()).
		Height(m.paneHeight()).
		Render(m.viewSidebar())
	detail := m.styles.Detail.
		Width(m.detailWidth()).
		Height(m.paneHeight()).
		Render(m.viewDetail())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, detail),
		m.viewFooter(),
	)
}

func (m *Model) viewSidebar() string {
	var b strings.Builder
	if m.focus == focusSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.styles.Muted.Render("/ search"))
	}
	b.WriteString("\n\n")

	visible := m.session.Visible()
	if len(visible) == 0 {
		if m.session.Query() != "" {
			b.WriteString(m.styles.Muted.Render("No matches"))
		} else {
			b.WriteString(m.styles.Muted.Render("No notes yet"))
		}
		return b.String()
	}

	selected := m.session.SelectedID()
	rows := max(1, m.paneHeight()-2)
	start := 0
	for i, n := range visible {
		if n.ID == selected && i >= rows {
			start = i - rows + 1
		}
	}
	end := min(len(visible), start+rows)

	width := m.sidebarWidth() - 2
	for i := start; i < end; i++ {
		n := visible[i]
		line := runewidth.Truncate(n.Title, width, "…")
		if n.ID == selected {
			line = m.styles.Selected.Render(runewidth.FillRight(line, width))
		} else {
			line = m.styles.Item.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) viewDetail() string {
	if m.session.Mode() == core.ModeEditing {
		heading := "New note"
		if d, _ := m.session.Draft(); !d.IsNew() {
			heading = "Edit note"
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Heading.Render(heading),
			m.title.View(),
			"",
			m.body.View(),
		)
	}

	n, ok := m.session.Current()
	if !ok {
		return m.styles.Muted.Render("Select a note or press n to create one.")
	}

	meta := "created " + formatTime(n.Created)
	if n.Updated != n.Created {
		meta += " · updated " + formatTime(n.Updated)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Heading.Render(n.Title),
		m.styles.Muted.Render(meta),
		"",
		lipgloss.NewStyle().Width(m.detailWidth()).Render(n.Body),
	)
}

func (m *Model) viewFooter() string {
	line := ""
	switch {
	case m.err != nil:
		line = m.styles.Error.Render(m.err.Error())
	case m.status != "":
		line = m.styles.Status.Render(m.status)
	}

	bindings := m.keys.browseHelp()
	if m.focus == focusTitle || m.focus == focusBody {
		bindings = m.keys.editHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, m.help.ShortHelpView(bindings))
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
