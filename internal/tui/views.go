package tui

import (
	"strings"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// View renders the chat.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := m.theme.Title.Render(cli.CoinIcon + " pennywise")

	footer := []string{m.input.View()}
	if m.busy {
		footer = append(footer, m.spinner.View()+m.theme.Muted.Render(" thinking..."))
	} else if m.pendingInput != "" {
		footer = append(footer, m.theme.StatusAsk.Render("answering: "+m.pendingInput))
	}
	footer = append(footer, m.theme.Muted.Render(m.help.View(m.keymap)+"  /save /clear /quit"))
	footerView := strings.Join(footer, "\n")

	available := m.height - lipgloss.Height(title) - lipgloss.Height(footerView) - 1
	body := tail(strings.Join(m.history, "\n"), available)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, "", footerView)
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
