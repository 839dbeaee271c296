package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/scenario"
	"github.com/matzehuels/laneview/pkg/sim"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorFail   = lipgloss.Color("167")
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

// Styles shared by the CLI output and the explorer.
var (
	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim    = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue  = lipgloss.NewStyle().Foreground(colorValue)
	StyleNumber = lipgloss.NewStyle().Foreground(colorAccent)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleHeader      = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	styleFailed      = lipgloss.NewStyle().Foreground(colorFail)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
)

// statusIcons prefix one-line status messages.
var statusIcons = map[string]string{
	"ok":   lipgloss.NewStyle().Foreground(colorOK).Render("✓"),
	"fail": lipgloss.NewStyle().Foreground(colorFail).Render("✗"),
	"info": lipgloss.NewStyle().Foreground(colorLabel).Render("›"),
}

func printStatus(icon, format string, args ...any) {
	fmt.Println(statusIcons[icon] + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printStatus("ok", format, args...) }
func printInfo(format string, args ...any)    { printStatus("info", format, args...) }

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + StyleNumber.Render(cmd))
}

// PrintError writes a failed command's error to w, with the error code
// split off from the message.
func PrintError(w io.Writer, err error) {
	msg := err.Error()
	if code := errors.GetCode(err); code != "" {
		msg = StyleDim.Render(string(code)) + " " + strings.TrimPrefix(msg, string(code)+": ")
	}
	fmt.Fprintln(w, statusIcons["fail"]+" "+msg)
}

// printRunStats prints view pool statistics of a run on a single line.
func printRunStats(steps int, stats sim.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d steps", steps),
		fmt.Sprintf("%d views created", stats.Created),
		fmt.Sprintf("%d recycled", stats.Recycled),
	}

	status := StyleDim.Render("fresh")
	if cached {
		status = lipgloss.NewStyle().Foreground(colorOK).Render("cached")
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line + StyleDim.Render(" · ") + status)
}

// stepTable renders step results as a table. failed is the index of a step
// that returned an error, or zero.
func stepTable(w io.Writer, steps []scenario.StepResult, failed int) {
	rows := make([][]string, 0, len(steps))
	for _, st := range steps {
		applied := ""
		if st.Applied != 0 {
			applied = strconv.Itoa(st.Applied)
		}
		window := "empty"
		if st.Window.Count > 0 {
			window = fmt.Sprintf("%d–%d", st.Window.First, st.Window.Last)
		}
		rows = append(rows, []string{
			strconv.Itoa(st.Index),
			string(st.Op),
			applied,
			window,
			fmt.Sprintf("%d..%d", st.Window.Start, st.Window.End),
			st.Elapsed.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "Op", "Applied", "Window", "Edges", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(steps) && steps[row].Index == failed {
				return base.Inherit(styleFailed)
			}
			if col == 2 || col == 3 {
				return base.Foreground(colorAccent)
			}
			return base.Foreground(colorLabel)
		})

	fmt.Fprintln(w, t.Render())
}
