package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nosyt/nosytos/internal/desktop"
)

const sidebarWidth = 34

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	activeEntryStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	taskbarStyle = lipgloss.NewStyle().Background(lipgloss.Color("238"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.state, m.width)
	taskbar := renderTaskbar(m.state.Taskbar, m.width)
	message := renderMessage(m.status, m.err, m.width)
	helpBar := helpStyle.Render(m.help.View(m.keys))

	used := lipgloss.Height(statusBar) + lipgloss.Height(taskbar) + lipgloss.Height(message) + lipgloss.Height(helpBar)
	bodyHeight := max(m.height-used, 3)
	previewWidth := max(m.width-sidebarWidth-1, 5)

	preview := strings.Join(renderPreview(m.state.Windows, m.state.Work, previewWidth, bodyHeight), "\n")

	var side string
	if m.mode == modeLauncher {
		side = m.launcher.View()
	} else {
		side = renderWindowList(m.state.Windows, m.selected, bodyHeight)
	}
	side = lipgloss.NewStyle().Width(sidebarWidth).Height(bodyHeight).PaddingLeft(1).Render(side)

	body := lipgloss.JoinHorizontal(lipgloss.Top, preview, side)
	return lipgloss.JoinVertical(lipgloss.Left, statusBar, body, taskbar, message, helpBar)
}

func renderStatusBar(connected bool, st desktop.State, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected", fmt.Sprintf("windows:%d", len(st.Windows)), fmt.Sprintf("open:%d", len(st.Taskbar))}
		if st.Active != "" {
			parts = append(parts, "active:"+st.Active)
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}
	return statusBarStyle.Width(width).Render(status)
}

func windowGlyph(w desktop.WindowView) string {
	switch {
	case !w.Visible:
		return "○"
	case w.Maximized:
		return "▣"
	case w.Active:
		return "●"
	default:
		return "◌"
	}
}

func renderWindowList(windows []desktop.WindowView, selected, height int) string {
	if len(windows) == 0 {
		return hiddenStyle.Render("no windows")
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Render("Windows")}
	for i, w := range windows {
		if len(lines) >= height {
			break
		}
		line := fmt.Sprintf("%s %-12s %s", windowGlyph(w), w.ID, w.Geometry)
		switch {
		case i == selected:
			line = selectedStyle.Render(line)
		case !w.Visible:
			line = hiddenStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderTaskbar(entries []desktop.TaskbarEntry, width int) string {
	parts := []string{entryStyle.Render("Start")}
	for i, e := range entries {
		label := fmt.Sprintf("%d:%s", i+1, e.Label)
		if e.Active {
			parts = append(parts, activeEntryStyle.Render(label))
		} else {
			parts = append(parts, entryStyle.Render(label))
		}
	}
	return taskbarStyle.Width(width).Render(strings.Join(parts, " "))
}

func renderMessage(status string, err error, width int) string {
	style := lipgloss.NewStyle().Width(width).Padding(0, 1)
	switch {
	case err != nil:
		return style.Render(errorStyle.Render(err.Error()))
	case status != "":
		return style.Render(okStyle.Render(status))
	default:
		return style.Render("")
	}
}
