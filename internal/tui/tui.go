// Package tui is a terminal view of the running desktop: a scaled preview of
// the visible windows, the window list, the taskbar, and a launcher.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Run starts the TUI against desk and blocks until the user quits.
func Run(desk Desktop) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(desk), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
