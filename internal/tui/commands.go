package tui

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) processCmd(input string) tea.Cmd {
	ctx := m.ctx
	processor := m.processor
	return func() tea.Msg {
		result, err := processor.Process(ctx, input)
		return processedMsg{input: input, result: result, err: err}
	}
}

func (m Model) saveCmd(txns []*model.Transaction) tea.Cmd {
	if len(txns) == 0 {
		return nil
	}
	ctx := m.ctx
	store := m.store
	return func() tea.Msg {
		if err := store.AddTransactions(ctx, txns); err != nil {
			return savedMsg{err: fmt.Errorf("failed to save %d transaction(s): %w", len(txns), err)}
		}
		return savedMsg{saved: len(txns)}
	}
}
