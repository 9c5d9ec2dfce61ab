// ABOUTME: TUI styles and program startup
// ABOUTME: Wraps the bubbletea program for the recorder UI
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Underline(true)
	waveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	recStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	playStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	pauseStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Run starts the TUI and blocks until the user quits
func Run(ctrl Controller, interval time.Duration) error {
	p := tea.NewProgram(NewModel(ctrl, interval), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
