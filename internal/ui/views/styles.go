package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Status      lipgloss.Style
	Busy        lipgloss.Style
	Spinner     lipgloss.Style
	Initials    lipgloss.Style
	Name        lipgloss.Style
	Highlight   lipgloss.Style
	Empty       lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		Placeholder: lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Busy:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Spinner:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Initials:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")), // blue
		Name:        lipgloss.NewStyle(),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Empty:       lipgloss.NewStyle().Faint(true).Italic(true),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Help:        lipgloss.NewStyle().Faint(true),
	}
}
