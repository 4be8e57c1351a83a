package interact

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/pt/pt"

	"github.com/jdginn/go-room-doa/room"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type item struct {
	arrival room.Arrival
	delayMs float64
	walls   []string
}

func (i item) Title() string {
	return fmt.Sprintf("%.3f ms %.2f dB", i.delayMs, i.arrival.GainDB())
}

func (i item) Description() string {
	if len(i.walls) == 0 {
		return "direct"
	}
	return fmt.Sprintf("order %d: %s", len(i.walls), strings.Join(i.walls, " > "))
}

func (i item) FilterValue() string {
	return strings.Join(i.walls, " ")
}

// Browser shows one source-microphone pair's specular arrivals and redraws
// the plan view with the selected path whenever the selection moves
type Browser struct {
	View   room.View
	Source pt.Vector
	Mic    pt.Vector
	// The plan view is written here
	Output string
	Logger *slog.Logger
}

type model struct {
	list     list.Model
	browser  *Browser
	rendered int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if idx := m.list.Index(); idx != m.rendered {
		m.rendered = idx
		if err := m.render(); err != nil {
			m.browser.Logger.Error("failed to render plan view", "err", err)
		}
	}
	return m, cmd
}

func (m model) View() string {
	return docStyle.Render(m.list.View())
}

func (m model) render() error {
	selected, ok := m.list.SelectedItem().(item)
	if !ok {
		return nil
	}
	img, err := m.browser.View.PlotArrivals([]room.Arrival{selected.arrival}, m.browser.Source, m.browser.Mic)
	if err != nil {
		return err
	}
	return room.SaveImage(m.browser.Output, img)
}

func (b *Browser) model(r *room.Room, arrivals []room.Arrival) model {
	if b.Logger == nil {
		b.Logger = slog.Default()
	}
	items := make([]list.Item, len(arrivals))
	direct := 0.0
	if len(arrivals) > 0 {
		direct = arrivals[0].Delay()
	}
	for i, arrival := range arrivals {
		walls := make([]string, len(arrival.Image.Walls))
		for k, w := range arrival.Image.Walls {
			walls[k] = r.Walls[w].Name
		}
		items[i] = item{arrival: arrival, delayMs: (arrival.Delay() - direct) / room.MS, walls: walls}
	}

	m := model{list: list.New(items, list.NewDefaultDelegate(), 0, 0), browser: b, rendered: -1}
	m.list.Title = fmt.Sprintf("Specular arrivals, %.1f dB in the first %.0f ms", 10*math.Log10(room.EnergyOverWindow(arrivals, room.C50_WINDOW_MS)), room.C50_WINDOW_MS)
	return m
}

// Run blocks until the user quits
func (b *Browser) Run(r *room.Room, arrivals []room.Arrival) error {
	m := b.model(r, arrivals)
	if err := m.render(); err != nil {
		return err
	}
	m.rendered = 0

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running arrival browser: %w", err)
	}
	return nil
}
