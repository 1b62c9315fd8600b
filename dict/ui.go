package dict

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lai323/lutego/ui"
	"github.com/muesli/reflow/wordwrap"
)

type tabLoadedMsg struct {
	index int
	tab   Tab
	err   error
}

var keyhelp = [][]string{
	{"tab/l", "next dictionary"},
	{"S-tab/h", "previous dictionary"},
	{"j/k", "scroll"},
	{"r", "reload"},
	{"?", "toggle help"},
	{"q", "quit"},
}

// DictModel shows a lookup session with one tab per dictionary.
type DictModel struct {
	session         *Session
	active          int
	ready           bool
	viewport        viewport.Model
	viewportContent string
	helpActive      bool
	width           int
}

func NewDictModel(session *Session) DictModel {
	return DictModel{session: session}
}

func (m DictModel) Init() tea.Cmd {
	return m.loadCmd(m.active)
}

func (m DictModel) loadCmd(i int) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		tab, err := session.LoadSync(i)
		return tabLoadedMsg{index: i, tab: tab, err: err}
	}
}

func (m DictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmds []tea.Cmd
		cmd  tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.session.Close()
			return m, tea.Quit
		case "tab", "l", "right":
			m.active = (m.active + 1) % len(m.session.Tabs())
			cmds = append(cmds, m.switchTab())
		case "shift+tab", "h", "left":
			n := len(m.session.Tabs())
			m.active = (m.active - 1 + n) % n
			cmds = append(cmds, m.switchTab())
		case "r":
			cmds = append(cmds, m.loadCmd(m.active))
		case "?":
			m.helpActive = !m.helpActive
			m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		viewportHeight := msg.Height - 2 // tab bar and footer
		if !m.ready {
			m.viewport = viewport.Model{Width: msg.Width, Height: viewportHeight}
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.refresh()

	case tabLoadedMsg:
		if msg.index == m.active {
			m.refresh()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *DictModel) switchTab() tea.Cmd {
	m.viewport.GotoTop()
	m.refresh()
	if tab, ok := m.session.Tab(m.active); ok && !tab.Loaded {
		return m.loadCmd(m.active)
	}
	return nil
}

func (m *DictModel) refresh() {
	m.viewportContent = m.tabContent()
	m.viewport.SetContent(wordwrap.String(m.viewportContent, m.viewport.Width))
}

func (m DictModel) tabContent() string {
	if m.helpActive {
		return ui.HelpModel{Keyhelp: keyhelp}.View()
	}
	tab, ok := m.session.Tab(m.active)
	if !ok {
		return ""
	}
	switch {
	case !tab.Loaded:
		return ui.StyleHelp("loading " + tab.Name + "...")
	case tab.Err != nil:
		return ui.StyleError("could not load " + tab.Name)
	case tab.Dictionary.Popup:
		return ui.StyleHelp("open in browser: ") + tab.URL
	}
	return RenderText(tab.Content, tab.URL)
}

func (m DictModel) tabBar() string {
	var names []string
	for i, tab := range m.session.Tabs() {
		if i == m.active {
			names = append(names, ui.StyleTabActive("["+tab.Name+"]"))
			continue
		}
		names = append(names, ui.StyleTab(" "+tab.Name+" "))
	}
	return ui.Truncate(strings.Join(names, " "), m.width)
}

func (m DictModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return strings.Join(
		[]string{
			m.tabBar(), "\n",
			m.viewport.View(), "\n",
			footer(m.viewport.Width, m.session.Term()),
		},
		"",
	)
}

func footer(width int, term string) string {
	if width < 60 {
		return ui.StyleLogo(" lute ")
	}

	t := time.Now()
	tstr := fmt.Sprintf("%s %02d:%02d", t.Weekday().String(), t.Hour(), t.Minute())

	return ui.Line(
		width,
		ui.Cell{
			Width: 8,
			Text:  ui.StyleLogo(" lute "),
		},
		ui.Cell{
			Width: 40,
			Text:  ui.StyleHelp(term + "  q:exit | ?:help"),
		},
		ui.Cell{
			Text:  ui.StyleHelp(tstr),
			Align: ui.RightAlign,
		},
	)
}

// Start runs the dictionary view until the user quits.
func Start(session *Session) error {
	defer session.Close()
	return tea.NewProgram(NewDictModel(session)).Start()
}
