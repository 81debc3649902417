// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	echoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	choiceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	logStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the bubbletea model of the interactive console: one line
// editor whose prompt tracks the dispatcher, with finished commands and
// their output printed above it.
type Model struct {
	ctx        context.Context
	dispatcher Dispatcher
	logger     *slog.Logger
	logs       *LogHandler
	keys       KeyMap

	input textinput.Model

	// history holds submitted non-blank lines, oldest first.
	// historyIndex is len(history) when not browsing.
	history      []string
	historyIndex int
	// draft is the line being edited before history browsing began.
	draft string

	// exitErr is the error that ended the session (one carrying an
	// exit code), returned from RunInteractive.
	exitErr  error
	quitting bool
}

// NewModel creates the interactive model. logs may be nil.
func NewModel(ctx context.Context, dispatcher Dispatcher, logger *slog.Logger, logs *LogHandler) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	input := textinput.New()
	input.Prompt = promptStyle.Render(dispatcher.Prompt())
	input.Focus()

	return Model{
		ctx:        ctx,
		dispatcher: dispatcher,
		logger:     logger,
		logs:       logs,
		keys:       DefaultKeyMap,
		input:      input,
	}
}

// Init implements tea.Model. Prints the dispatcher's banner, if it has
// one, and anything logged during startup.
func (model Model) Init() tea.Cmd {
	var commands []tea.Cmd
	if bannered, ok := model.dispatcher.(interface{ Banner() string }); ok {
		commands = append(commands, tea.Println(bannered.Banner()))
	}
	commands = append(commands, model.logCommands()...)
	return tea.Sequence(append(commands, textinput.Blink)...)
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, isKey := message.(tea.KeyMsg)
	if !isKey {
		var command tea.Cmd
		model.input, command = model.input.Update(message)
		return model, command
	}

	switch {
	case key.Matches(keyMessage, model.keys.Interrupt):
		return model.quit("Exiting...")

	case key.Matches(keyMessage, model.keys.EndOfInput) && model.input.Value() == "":
		return model.quit("exit")

	case key.Matches(keyMessage, model.keys.Submit):
		return model.submit()

	case key.Matches(keyMessage, model.keys.Complete):
		return model.complete()

	case key.Matches(keyMessage, model.keys.Previous):
		model.browseHistory(-1)
		return model, nil

	case key.Matches(keyMessage, model.keys.Next):
		model.browseHistory(1)
		return model, nil
	}

	var command tea.Cmd
	model.input, command = model.input.Update(message)
	return model, command
}

// View implements tea.Model.
func (model Model) View() string {
	if model.quitting {
		return ""
	}
	return model.input.View()
}

// ExitErr returns the error that ended the session, if any.
func (model Model) ExitErr() error {
	return model.exitErr
}

func (model Model) quit(message string) (tea.Model, tea.Cmd) {
	model.quitting = true
	echo := echoStyle.Render(model.dispatcher.Prompt() + model.input.Value())
	return model, tea.Sequence(tea.Println(echo), tea.Println(message), tea.Quit)
}

func (model Model) submit() (tea.Model, tea.Cmd) {
	line := model.input.Value()
	echo := echoStyle.Render(model.dispatcher.Prompt() + line)
	model.input.Reset()
	if strings.TrimSpace(line) != "" {
		model.history = append(model.history, line)
	}
	model.historyIndex = len(model.history)
	model.draft = ""

	output, err := capture(model.ctx, model.dispatcher, line, model.logger)

	commands := []tea.Cmd{tea.Println(echo)}
	if text := displayText(output); text != "" {
		commands = append(commands, tea.Println(text))
	}
	commands = append(commands, model.logCommands()...)

	if err != nil || !model.dispatcher.Running() {
		model.exitErr = err
		model.quitting = true
		commands = append(commands, tea.Quit)
	}
	model.input.Prompt = promptStyle.Render(model.dispatcher.Prompt())
	return model, tea.Sequence(commands...)
}

// displayText prepares command output for printing above the prompt.
// File contents are arbitrary bytes, so escape sequences are stripped
// before they can move the cursor or repaint the screen under the
// program.
func displayText(output string) string {
	return ansi.Strip(strings.TrimSuffix(output, "\n"))
}

func (model Model) complete() (tea.Model, tea.Cmd) {
	line := model.input.Value()
	completion := Complete(line, model.dispatcher.Candidates)
	model.input.SetValue(completion.Line)
	model.input.CursorEnd()
	if len(completion.Choices) == 0 {
		return model, nil
	}
	echo := echoStyle.Render(model.dispatcher.Prompt() + line)
	choices := choiceStyle.Render(strings.Join(completion.Choices, "  "))
	return model, tea.Sequence(tea.Println(echo), tea.Println(choices))
}

// browseHistory moves through submitted lines. direction is -1 for
// older, +1 for newer. Moving past the newest entry restores the draft.
func (model *Model) browseHistory(direction int) {
	target := model.historyIndex + direction
	if target < 0 || target > len(model.history) {
		return
	}
	if model.historyIndex == len(model.history) {
		model.draft = model.input.Value()
	}
	model.historyIndex = target
	if target == len(model.history) {
		model.input.SetValue(model.draft)
	} else {
		model.input.SetValue(model.history[target])
	}
	model.input.CursorEnd()
}

func (model Model) logCommands() []tea.Cmd {
	var commands []tea.Cmd
	for _, line := range model.logs.drain() {
		style := logStyle
		switch {
		case line.Level >= slog.LevelError:
			style = errorStyle
		case line.Level >= slog.LevelWarn:
			style = warningStyle
		}
		commands = append(commands, tea.Println(style.Render(line.Text)))
	}
	return commands
}

// RunInteractive runs the console as a bubbletea program on Input and
// Output until the user exits, the dispatcher stops running, or ctx is
// cancelled. Cancellation is a normal exit.
func RunInteractive(ctx context.Context, dispatcher Dispatcher, options Options) error {
	options = options.withDefaults()
	model := NewModel(ctx, dispatcher, options.Logger, options.Logs)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(options.Input),
		tea.WithOutput(options.Output),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if finalModel, ok := final.(Model); ok {
		return finalModel.ExitErr()
	}
	return nil
}
