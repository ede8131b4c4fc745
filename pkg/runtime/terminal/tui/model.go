// Package tui is the Bubble Tea front-end of the report viewer.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/de-tools/soc-atlas/pkg/runtime/terminal/ui"
	"github.com/de-tools/soc-atlas/pkg/viewer"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	minItemWidth  = 20
)

type loadedMsg viewer.LoadResult

type Model struct {
	ctx      context.Context
	viewer   *viewer.Viewer
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	styles   ui.Styles

	cursor     int
	cursorLine int
}

// New wraps v. The context carries the logger and bounds the load.
func New(ctx context.Context, v *viewer.Viewer) Model {
	vp := viewport.New(defaultWidth, defaultHeight-1)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	m := Model{
		ctx:      ctx,
		viewer:   v,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: vp,
		styles:   ui.DefaultStyles(),
	}
	m.refresh()
	return m
}

// Run shows the viewer full screen until the user quits.
func Run(ctx context.Context, v *viewer.Viewer, opts ...tea.ProgramOption) error {
	defer v.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, v), opts...).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	results := m.viewer.Start(m.ctx)
	return func() tea.Msg {
		return loadedMsg(<-results)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-lipgloss.Height(m.help.View(m.keys)), 1)
		m.refresh()
		return m, nil

	case loadedMsg:
		m.viewer.Apply(viewer.LoadResult(msg))
		m.cursor = 0
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.viewer.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.move(m.viewer.Prev)
		case key.Matches(msg, m.keys.Next):
			m.move(m.viewer.Next)
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(viewer.Categories)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			m.viewer.Toggle(m.cursor)
		case key.Matches(msg, m.keys.Section):
			n, _ := strconv.Atoi(msg.String())
			m.cursor = n - 1
			m.viewer.Toggle(m.cursor)
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.refresh()
		m.follow()
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	return m.viewport.View() + "\n" + m.help.View(m.keys)
}

func (m *Model) move(step func()) {
	before := m.viewer.Index()
	step()
	if m.viewer.Index() != before {
		m.cursor = 0
		m.viewport.GotoTop()
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
}

// follow scrolls just enough to keep the focused section trigger on screen.
func (m *Model) follow() {
	switch {
	case m.cursorLine < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursorLine)
	case m.cursorLine >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursorLine - m.viewport.Height + 1)
	}
}

func (m *Model) render() string {
	s := m.styles
	if m.viewer.Loading() {
		m.cursorLine = 0
		return s.Card(s.Loading.Render("Loading…"))
	}

	var lines []string
	lines = append(lines, s.Title.Render(m.viewer.Title()), "")

	fields := make([]string, 0, len(m.viewer.Summary()))
	for _, f := range m.viewer.Summary() {
		fields = append(fields, s.Label.Render(f.Label+":")+" "+f.Value)
	}
	lines = append(lines, strings.Split(s.Panel("Summary", strings.Join(fields, "\n")), "\n")...)
	lines = append(lines, "")

	for i, section := range m.viewer.Sections() {
		marker := "▸"
		if section.Trigger.Open {
			marker = "▾"
		}
		trigger := fmt.Sprintf("%s %d. %s (%d)", marker, i+1, section.Trigger.Label, section.Count)
		if i == m.cursor {
			m.cursorLine = strings.Count(strings.Join(lines, "\n"), "\n") + 1
			lines = append(lines, s.Focused.Render(trigger))
		} else {
			lines = append(lines, s.Trigger.Render(trigger))
		}

		if section.Items == nil {
			continue
		}
		if len(section.Items) == 0 {
			lines = append(lines, s.Item.Render(s.Disabled.Render("(none)")))
		}
		for _, item := range section.Items {
			lines = append(lines, m.item(item))
		}
	}

	lines = append(lines, "", m.pager())

	// The card adds a border and one line of padding above the body.
	m.cursorLine += 2
	return s.Card(strings.Join(lines, "\n"))
}

// item renders a bullet wrapped to the space the card leaves, with continuation
// lines indented under the text.
func (m *Model) item(text string) string {
	s := m.styles
	const bullet = "• "
	width := m.viewport.Width - s.Frame.GetHorizontalFrameSize() - s.Item.GetHorizontalFrameSize() - lipgloss.Width(bullet)
	body := lipgloss.NewStyle().Width(max(width, minItemWidth)).Render(text)
	return s.Item.Render(lipgloss.JoinHorizontal(lipgloss.Top, bullet, body))
}

func (m *Model) pager() string {
	s := m.styles
	control := func(label string, enabled bool) string {
		if enabled {
			return s.Control.Render(label)
		}
		return s.Disabled.Render(label)
	}
	return strings.Join([]string{
		control("[‹ Prev]", m.viewer.CanPrev()),
		fmt.Sprintf("%d/%d", m.viewer.Index()+1, m.viewer.Len()),
		control("[Next ›]", m.viewer.CanNext()),
	}, "  ")
}
