package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cchalm/sorabot/internal/chat"
)

var (
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	aiLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sourceTagStyle = lipgloss.NewStyle().Faint(true)
	thinkingStyle  = lipgloss.NewStyle().Italic(true).Faint(true)
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

// renderTurn writes a turn as "You: ..." or "AI: ...", followed by its source tags if it has any
func renderTurn(w io.Writer, turn chat.Turn) {
	label := aiLabelStyle.Render("AI:")
	if turn.Role() == chat.RoleUser {
		label = userLabelStyle.Render("You:")
	}
	fmt.Fprintf(w, "%s %s\n", label, turn.Content())

	if turn.HasSources() {
		tags := []string{}
		for _, source := range turn.Sources() {
			tags = append(tags, sourceTagStyle.Render("["+source+"]"))
		}
		fmt.Fprintf(w, "    %s\n", strings.Join(tags, " "))
	}
}

func renderSuggestions(w io.Writer, suggestions []string) {
	fmt.Fprintln(w, hintStyle.Render("Try one of these, or ask anything:"))
	for i, suggestion := range suggestions {
		fmt.Fprintf(w, "  %s %s\n", hintStyle.Render(fmt.Sprintf(":%d", i+1)), suggestion)
	}
}
