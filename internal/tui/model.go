// Package tui implements the interactive chat console for entering transactions.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Chat commands.
const (
	commandSave  = "/save"
	commandClear = "/clear"
	commandQuit  = "/quit"
)

// Model holds the chat state.
type Model struct {
	ctx       context.Context
	processor InputProcessor
	store     service.TransactionStore
	localizer *i18n.Localizer
	logger    *slog.Logger
	// savedHashes guards against saving a draft twice while a follow-up
	// re-processes the same input.
	savedHashes map[string]bool
	theme       themes.Theme
	keymap      KeyMap
	help        help.Model
	// pendingInput is the text awaiting a follow-up answer.
	pendingInput string
	input        textinput.Model
	spinner      spinner.Model
	history      []string
	// drafts are complete transactions waiting for /save.
	drafts   []model.ProcessedTransaction
	width    int
	height   int
	busy     bool
	quitting bool
}

func newModel(ctx context.Context, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "早餐 80, lunch 120 yesterday..."
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = cfg.Theme.Spinner

	localizer := cfg.Localizer
	if localizer == nil {
		localizer = i18n.New("en")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return Model{
		ctx:         ctx,
		processor:   cfg.Processor,
		store:       cfg.Store,
		localizer:   localizer,
		logger:      logger,
		savedHashes: make(map[string]bool),
		theme:       cfg.Theme,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		input:       input,
		spinner:     spin,
		width:       cfg.Width,
		height:      cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ClearScreen):
			m.history = nil
			return m, nil
		case key.Matches(msg, m.keymap.Submit):
			if m.busy {
				return m, nil
			}
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case processedMsg:
		m.busy = false
		return m.handleProcessed(msg)

	case savedMsg:
		if msg.err != nil {
			m.logger.Error("Failed to save transactions", "error", msg.err, "saved", msg.saved)
			m.appendLine(m.theme.StatusError.Render(cli.ErrorIcon + " " + msg.err.Error()))
		}
		if msg.saved > 0 {
			m.appendLine(m.theme.StatusSaved.Render(fmt.Sprintf("%s Saved %d transaction(s)", cli.SuccessIcon, msg.saved)))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return m, nil
	}

	switch text {
	case commandQuit:
		m.quitting = true
		return m, tea.Quit
	case commandClear:
		m.reset()
		return m, nil
	case commandSave:
		cmd := m.saveDrafts()
		return m, cmd
	}

	m.appendLine(m.theme.UserLine.Render("› " + text))

	if m.pendingInput != "" {
		text = m.pendingInput + " " + text
	}

	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.processCmd(text))
}

func (m Model) handleProcessed(msg processedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("Failed to process input", "error", msg.err, "kind", llm.KindOf(msg.err))
		m.appendLine(m.theme.StatusError.Render(cli.ErrorIcon + " " + m.localizer.ErrorMessage(llm.KindOf(msg.err))))
		return m, nil
	}

	result := msg.result
	m.appendLine(cli.RenderProcessResult(result, m.localizer))

	var toSave []*model.Transaction
	m.drafts = nil
	for _, processed := range result.Transactions {
		if !processed.CanAutoSave() {
			if processed.IsComplete {
				m.drafts = append(m.drafts, processed)
			}
			continue
		}
		txn, err := engine.Promote(processed, model.SourceAIText)
		if err != nil {
			m.logger.Warn("Failed to promote transaction", "error", err)
			continue
		}
		if m.savedHashes[txn.Hash] {
			continue
		}
		m.savedHashes[txn.Hash] = true
		toSave = append(toSave, txn)
	}

	if result.HasIncomplete && result.FollowUpQuestion != "" {
		m.pendingInput = msg.input
	} else {
		m.pendingInput = ""
		m.savedHashes = make(map[string]bool)
	}

	if len(m.drafts) > 0 {
		m.appendLine(m.theme.StatusAsk.Render(fmt.Sprintf("%d draft(s) need confirmation, type %s to keep them", len(m.drafts), commandSave)))
	}

	return m, m.saveCmd(toSave)
}

func (m *Model) saveDrafts() tea.Cmd {
	var toSave []*model.Transaction
	for _, processed := range m.drafts {
		txn, err := engine.Promote(processed, model.SourceAIText)
		if err != nil {
			continue
		}
		toSave = append(toSave, txn)
	}
	m.drafts = nil
	if len(toSave) == 0 {
		m.appendLine(m.theme.Muted.Render("Nothing to save."))
		return nil
	}
	return m.saveCmd(toSave)
}

func (m *Model) reset() {
	m.history = nil
	m.drafts = nil
	m.pendingInput = ""
	m.savedHashes = make(map[string]bool)
}

func (m *Model) appendLine(line string) {
	m.history = append(m.history, line)
}
