package output

import "github.com/charmbracelet/lipgloss"

// Styles are the text styles of styled output.
type Styles struct {
	r *lipgloss.Renderer

	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	NodeID  lipgloss.Style
}

// NewStyles builds the style set for a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		r:       r,
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		Header2: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		NodeID:  r.NewStyle().Foreground(lipgloss.Color("13")),
	}
}

// Swatch renders text in a hex colour such as a node type's palette colour.
func (s *Styles) Swatch(hex, text string) string {
	if hex == "" {
		return text
	}
	return s.r.NewStyle().Foreground(lipgloss.Color(hex)).Render(text)
}
