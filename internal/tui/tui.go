package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/backrooms/internal/models"
	"github.com/tatianab/backrooms/internal/session"
)

// Game is the part of the session controller the terminal client drives.
type Game interface {
	Initialize(ctx context.Context) error
	ApplyChoiceByID(ctx context.Context, id string) error
	ApplyPartialUpdate(ctx context.Context, patch session.Patch) error
	View() session.View
	Subscribe(fn func(session.View)) (cancel func())
}

type model struct {
	game     Game
	view     session.View
	busy     bool
	lastErr  error
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E8D47A")).
			Bold(true).
			Underline(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))
)

func NewModel(game Game) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		game:     game,
		view:     game.View(),
		busy:     true,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

// viewMsg carries a view published by the controller.
type viewMsg session.View

// doneMsg reports that an operation finished.
type doneMsg struct {
	err error
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run(func(ctx context.Context) error {
		return m.game.Initialize(ctx)
	}))
}

func (m model) run(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{op(context.Background())}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.7)
		m.viewport.Height = max(msg.Height-6, 5)
		m.viewport.SetContent(m.renderEvent())

	case viewMsg:
		m.view = session.View(msg)
		m.viewport.SetContent(m.renderEvent())
		m.viewport.GotoTop()

	case doneMsg:
		m.busy = false
		m.lastErr = msg.err
		m.view = m.game.View()
		m.viewport.SetContent(m.renderEvent())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch key := msg.String(); key {
	case "r":
		if m.view.Status == session.StatusErrored || m.view.Status == session.StatusUninitialized {
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.run(func(ctx context.Context) error {
				return m.game.Initialize(ctx)
			}))
		}
	case "t":
		if m.view.Status == session.StatusReady && m.view.State != nil {
			open := !m.view.State.IsTabletOpen
			m.busy = true
			return m, m.run(func(ctx context.Context) error {
				return m.game.ApplyPartialUpdate(ctx, session.Patch{IsTabletOpen: &open})
			})
		}
	case "1", "2", "3", "4":
		choices := m.choices()
		i := int(key[0] - '1')
		if i < len(choices) {
			id := choices[i].ID
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.run(func(ctx context.Context) error {
				return m.game.ApplyChoiceByID(ctx, id)
			}))
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) choices() []models.GameChoice {
	if m.view.Status != session.StatusReady || m.view.State == nil || m.view.State.CurrentEvent == nil {
		return nil
	}
	return m.view.State.CurrentEvent.Choices
}

func (m model) View() string {
	var s string
	switch {
	case m.view.Status == session.StatusErrored:
		s = errorStyle.Render("Error: "+m.view.Err) + "\n\n" + helpStyle.Render("Press r to retry or q to quit.")

	case m.view.State == nil:
		s = fmt.Sprintf("\n  %s Entering the Backrooms...\n", m.spinner.View())

	default:
		main := m.viewport.View()
		if m.view.State.IsTabletOpen {
			main = lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderTablet())
		}
		status := helpStyle.Render("1-4 choose, t tablet, q quit")
		if m.busy {
			status = m.spinner.View() + " The corridors shift..."
		} else if m.lastErr != nil {
			status = errorStyle.Render(m.lastErr.Error())
		}
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderStats(),
			main,
			"\n"+status,
		)
	}
	return "\n" + s + "\n"
}

func (m model) renderStats() string {
	st := m.view.State.PlayerStats
	var parts []string
	for _, stat := range models.Stats {
		cur, limit := st.Get(stat)
		parts = append(parts, fmt.Sprintf("%s %d/%d", strings.ToUpper(string(stat)[:1])+string(stat)[1:], cur, limit))
	}
	return titleStyle.Render(m.view.State.CurrentLevelName) + "  " + strings.Join(parts, "  ")
}

func (m model) renderEvent() string {
	if m.view.State == nil || m.view.State.CurrentEvent == nil {
		return ""
	}
	ev := m.view.State.CurrentEvent
	width := max(m.viewport.Width-2, 20)

	var b strings.Builder
	b.WriteString(titleStyle.Render(ev.Title) + "\n\n")
	b.WriteString(textStyle.Width(width).Render(ev.Description) + "\n\n")
	if ev.EntityPresent && ev.EntityName != "" {
		fmt.Fprintf(&b, "Entity: %s (%s, threat %s)\n\n", ev.EntityName, ev.EntityType, ev.EntityThreatLevel)
	}
	if len(ev.EnvironmentalHazards) > 0 {
		fmt.Fprintf(&b, "Hazards: %s\n\n", strings.Join(ev.EnvironmentalHazards, ", "))
	}
	for i, c := range ev.Choices {
		b.WriteString(choiceStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Text)) + "\n")
	}
	return b.String()
}

// renderTablet shows the survivor's tablet: inventory, factions and the
// most recent log entries.
func (m model) renderTablet() string {
	state := m.view.State
	var b strings.Builder

	b.WriteString(titleStyle.Render("INVENTORY") + "\n")
	if len(state.Inventory) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, item := range state.Inventory {
		fmt.Fprintf(&b, "- %s x%d\n", item.Name, item.Quantity)
	}

	b.WriteString("\n" + titleStyle.Render("FACTIONS") + "\n")
	names := make([]string, 0, len(state.FactionReputation))
	for name := range state.FactionReputation {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %d\n", name, state.FactionReputation[name])
	}

	b.WriteString("\n" + titleStyle.Render("LOG") + "\n")
	log := state.GameLog
	if len(log) > 5 {
		log = log[len(log)-5:]
	}
	for _, e := range log {
		b.WriteString(e.Content + "\n")
	}

	width := max(int(float64(m.width)*0.28), 20)
	return panelStyle.Width(width).Height(m.viewport.Height).Render(b.String())
}

// Run starts the terminal client and blocks until the player quits.
func Run(game Game, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(NewModel(game), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	cancel := game.Subscribe(func(v session.View) {
		p.Send(viewMsg(v))
	})
	defer cancel()
	_, err := p.Run()
	return err
}
