package tui

import "github.com/Veraticus/pennywise/internal/model"

// processedMsg carries the result of processing one submitted input.
type processedMsg struct {
	err    error
	result *model.ProcessResult
	input  string
}

// savedMsg reports how many transactions were persisted.
type savedMsg struct {
	err   error
	saved int
}
