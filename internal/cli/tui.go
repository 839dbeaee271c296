package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/laneview/pkg/lanes"
	"github.com/matzehuels/laneview/pkg/render"
	"github.com/matzehuels/laneview/pkg/scenario"
)

// Map styles
var (
	mapEmptyStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	mapGhostStyle   = lipgloss.NewStyle().Foreground(colorLabel).Faint(true)
	mapCheckedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	mapBorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted)
	statusErrStyle  = lipgloss.NewStyle().Foreground(colorFail)

	mapPalette = []lipgloss.Color{"36", "75", "35", "220", "168", "141", "209", "114"}
)

// =============================================================================
// Key bindings
// =============================================================================

type laneKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Toggle      key.Binding
	Insert      key.Binding
	Remove      key.Binding
	Orientation key.Binding
	MoreLanes   key.Binding
	FewerLanes  key.Binding
	Save        key.Binding
	Restore     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultLaneKeyMap() laneKeyMap {
	return laneKeyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll back")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll forward")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("b", "page back")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "f"), key.WithHelp("f", "page forward")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first item")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last item")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check first visible")),
		Insert:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert before first visible")),
		Remove:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove first visible")),
		Orientation: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "flip orientation")),
		MoreLanes:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more lanes")),
		FewerLanes:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer lanes")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Restore:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restore")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k laneKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.PageDown, k.Help, k.Quit}
}

func (k laneKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Toggle, k.Insert, k.Remove},
		{k.Orientation, k.MoreLanes, k.FewerLanes},
		{k.Save, k.Restore, k.Help, k.Quit},
	}
}

// =============================================================================
// LaneModel - Interactive window explorer
// =============================================================================

// LaneModel is the bubbletea model that scrolls a laid out window.
type LaneModel struct {
	State *scenario.State

	// ScrollStep is the distance of one line scroll in layout units.
	ScrollStep int

	keys   laneKeyMap
	help   help.Model
	cellW  int
	cellH  int
	minW   int
	minH   int
	status string
	err    error
}

// NewLaneModel creates a model for a laid out state.
func NewLaneModel(st *scenario.State, cellW, cellH int) LaneModel {
	return LaneModel{
		State:      st,
		ScrollStep: max(1, cellH),
		keys:       defaultLaneKeyMap(),
		help:       help.New(),
		cellW:      max(1, cellW),
		cellH:      max(1, cellH),
		minW:       max(1, cellW),
		minH:       max(1, cellH),
	}
}

func (m LaneModel) Init() tea.Cmd {
	return nil
}

func (m LaneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if st, ok := m.stepFor(msg); ok {
			m.apply(st)
		}
	case tea.WindowSizeMsg:
		m.fit(msg.Width, msg.Height)
		m.help.Width = msg.Width
	}
	return m, nil
}

// stepFor maps a key to the scenario step it performs.
func (m LaneModel) stepFor(msg tea.KeyMsg) (scenario.Step, bool) {
	vp := m.State.Host.Viewport()
	page := vp.Height
	if m.State.Engine.Orientation() == lanes.Horizontal {
		page = vp.Width
	}
	first := m.State.Engine.Window().First

	switch {
	case key.Matches(msg, m.keys.Down):
		return scenario.Step{Op: scenario.OpScroll, Delta: m.ScrollStep}, true
	case key.Matches(msg, m.keys.Up):
		return scenario.Step{Op: scenario.OpScroll, Delta: -m.ScrollStep}, true
	case key.Matches(msg, m.keys.PageDown):
		return scenario.Step{Op: scenario.OpScroll, Delta: page}, true
	case key.Matches(msg, m.keys.PageUp):
		return scenario.Step{Op: scenario.OpScroll, Delta: -page}, true
	case key.Matches(msg, m.keys.Top):
		return scenario.Step{Op: scenario.OpScrollTo, Position: 0}, true
	case key.Matches(msg, m.keys.Bottom):
		return scenario.Step{Op: scenario.OpScrollTo, Position: max(0, m.State.Host.ItemCount()-1)}, true
	case key.Matches(msg, m.keys.Toggle):
		return scenario.Step{Op: scenario.OpToggle, Position: max(0, first)}, first >= 0
	case key.Matches(msg, m.keys.Insert):
		return scenario.Step{Op: scenario.OpInsert, Position: max(0, first), Count: 1}, true
	case key.Matches(msg, m.keys.Remove):
		return scenario.Step{Op: scenario.OpRemove, Position: max(0, first), Count: 1}, first >= 0
	case key.Matches(msg, m.keys.Orientation):
		o := lanes.Horizontal
		if m.State.Engine.Orientation() == lanes.Horizontal {
			o = lanes.Vertical
		}
		return scenario.Step{Op: scenario.OpOrientation, Orientation: o}, true
	case key.Matches(msg, m.keys.MoreLanes):
		n := len(m.State.Engine.Lanes()) + 1
		return scenario.Step{Op: scenario.OpColumns, Columns: n, Rows: n}, true
	case key.Matches(msg, m.keys.FewerLanes):
		n := max(1, len(m.State.Engine.Lanes())-1)
		return scenario.Step{Op: scenario.OpColumns, Columns: n, Rows: n}, true
	case key.Matches(msg, m.keys.Save):
		return scenario.Step{Op: scenario.OpSave}, true
	case key.Matches(msg, m.keys.Restore):
		return scenario.Step{Op: scenario.OpRestore}, true
	}
	return scenario.Step{}, false
}

func (m *LaneModel) apply(st scenario.Step) {
	res, err := m.State.Apply(st)
	m.err = err
	if err != nil {
		return
	}
	m.status = string(st.Op)
	if res.Applied != 0 {
		m.status += fmt.Sprintf(" %+d", res.Applied)
	}
}

// fit grows the cell size until the map fits the terminal.
func (m *LaneModel) fit(width, height int) {
	vp := m.State.Host.Viewport()
	cols, rows := max(1, width-2), max(1, height-8)
	m.cellW = max(m.minW, ceilDiv(vp.Width, cols))
	m.cellH = max(m.minH, ceilDiv(vp.Height, rows))
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func (m LaneModel) View() string {
	var b strings.Builder
	doc := m.State.Document()

	b.WriteString(StyleTitle.Render("laneview"))
	b.WriteString(" " + StyleDim.Render(fmt.Sprintf("%s · %s · %d lanes · %d items",
		doc.Policy, doc.Orientation, len(doc.Lanes), m.State.Host.ItemCount())))
	b.WriteString("\n")
	b.WriteString(mapBorderStyle.Render(renderMap(doc, m.cellW, m.cellH)))
	b.WriteString("\n")
	b.WriteString(m.statusLine(doc))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m LaneModel) statusLine(doc render.Document) string {
	if m.err != nil {
		return statusIcons["fail"] + " " + statusErrStyle.Render(m.err.Error())
	}
	window := "empty"
	if doc.Window.Count > 0 {
		window = fmt.Sprintf("items %d–%d", doc.Window.First, doc.Window.Last)
	}
	line := fmt.Sprintf("%s · offset %d of %d", window, doc.Metrics.Offset, doc.Metrics.Range)
	if m.status != "" {
		line += " · " + m.status
	}
	return StyleDim.Render(line)
}

// renderMap draws the rasterized viewport with one color per item.
func renderMap(doc render.Document, cellW, cellH int) string {
	r := render.Rasterize(doc, cellW, cellH)
	var b strings.Builder
	for y, row := range r.Cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			switch cell {
			case render.CellEmpty:
				b.WriteString(mapEmptyStyle.Render("·"))
			case render.CellGhost:
				b.WriteString(mapGhostStyle.Render("~"))
			default:
				it := doc.Items[cell]
				style := lipgloss.NewStyle().Foreground(mapPalette[it.Position%len(mapPalette)])
				if it.Checked {
					style = style.Inherit(mapCheckedStyle)
				}
				b.WriteString(style.Render(string(render.Glyph(cell))))
			}
		}
	}
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

func (c *CLI) tuiCommand() *cobra.Command {
	var (
		overrides  scenarioOverrides
		runSteps   bool
		cellWidth  = defaultCellWidth
		cellHeight = defaultCellHeight
	)

	cmd := &cobra.Command{
		Use:   "tui [scenario.toml]",
		Short: "Scroll the window of a scenario interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := loadScenario(ctx, args[0], &overrides)
			if err != nil {
				return err
			}
			st, err := startInteractive(sc, runSteps)
			if err != nil {
				return err
			}
			return runTUI(ctx, NewLaneModel(st, cellWidth, cellHeight))
		},
	}

	addOverrideFlags(cmd, &overrides)
	cmd.Flags().BoolVar(&runSteps, "run-steps", false, "apply the scenario steps before starting")
	cmd.Flags().IntVar(&cellWidth, "cell-width", cellWidth, "minimum layout units per map column")
	cmd.Flags().IntVar(&cellHeight, "cell-height", cellHeight, "minimum layout units per map row")

	return cmd
}

// startInteractive lays out the scenario with logging silenced, since log
// lines would tear the alternate screen.
func startInteractive(sc *scenario.Scenario, runSteps bool) (*scenario.State, error) {
	st, err := scenario.Start(sc.Config, log.New(io.Discard))
	if err != nil {
		return nil, err
	}
	if err := st.Engine.Layout(); err != nil {
		return nil, err
	}
	if runSteps {
		for i, step := range sc.Steps {
			if _, err := st.Apply(step); err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
			}
		}
	}
	return st, nil
}

func runTUI(ctx context.Context, m LaneModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
