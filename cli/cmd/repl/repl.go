package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyn-lang/dyn/lang"
	"github.com/dyn-lang/dyn/log"
)

const (
	evalPrompt = "➜ "
	contPrompt = "… "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this help
  list              List top-level let bindings
  format [kind]     Show or set the output format: ast, native, json
  reset             Forget all bindings
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type Dyn source to parse it and print its syntax tree
  An unclosed block or string continues on the next line
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between input and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C to discard input, on an empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// outputFormat selects how accepted input is echoed back.
type outputFormat string

const (
	formatAST    outputFormat = "ast"
	formatNative outputFormat = "native"
	formatJSON   outputFormat = "json"
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	keywordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(prompt, input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *session
	logger       log.Logger
	history      *History
	historyIdx   int
	format       outputFormat
	pending      string        // source of an incomplete multi-line entry
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL. Programs in preload seed the session, so that their
// bindings are listed and completed. History is kept in cacheDir; an empty
// cacheDir keeps it in memory.
func Run(
	ctx context.Context,
	preload []*lang.Program,
	cacheDir string,
	logger log.Logger,
	opts ...tea.ProgramOption,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("preload", len(preload)),
	)

	sess := new(session)
	for _, prog := range preload {
		sess.add(prog)
	}

	historyPath := ""
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, sess, history, logger)

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	sess *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    sess,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		format:     formatAST,
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case strings.TrimSpace(input) == "" && m.pending != "":
		b.WriteString(hintStyle.Render("Continue the entry or press Ctrl+C to discard it"))

	case strings.TrimSpace(input) == "" && m.mode == modeEval:
		b.WriteString(hintStyle.Render("Type Dyn source or press Esc for commands"))

	case strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && m.pending == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.pending = ""
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m = m.withPrompt()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyPrev(false), nil

	case tea.KeyDown:
		return m.historyNext(false), nil

	case tea.KeyShiftUp:
		return m.historyPrev(true), nil

	case tea.KeyShiftDown:
		return m.historyNext(true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, keeping the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	line := m.input.Value()
	input := strings.TrimSpace(line)

	if input == "" && m.pending == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if m.mode == modeCtrl {
		m.addHistory(input, modeCtrl)
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.addHistory(input, modeEval)

	prompt := evalPrompt
	src := line

	if m.pending != "" {
		prompt = contPrompt
		src = m.pending + "\n" + line
	}

	echo := tea.Println(formatCommand(prompt, line))

	prog, err := lang.ParseString(m.ctxFunc(), src,
		lang.WithLogger(m.logger),
		lang.WithCache(true),
	)
	if err != nil {
		var diag *lang.Diagnostic
		if errors.As(err, &diag) && incomplete(diag) {
			m.pending = src
			m = m.withPrompt()

			return m, echo
		}

		m.pending = ""
		m = m.withPrompt()

		m.logger.TraceContext(m.ctxFunc(), "repl parse failed", slog.Any("error", err))

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(renderError(err))))
	}

	m.pending = ""
	m = m.withPrompt()
	m.session.add(prog)

	m.logger.TraceContext(m.ctxFunc(), "repl parsed",
		slog.Int("exprs", len(prog.Exprs)),
		slog.Int("tokens", lang.TokenCount(prog)),
	)

	out, err := render(prog, m.format)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	if out == "" {
		return m, echo
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m *model) addHistory(input string, mode inputMode) {
	if err := m.history.Add(input, mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
}

// incomplete reports whether a diagnostic was caused by input ending inside
// an open construct, so that more lines could complete it.
func incomplete(d *lang.Diagnostic) bool {
	switch d.Kind {
	case lang.UnclosedBlock, lang.UnclosedString, lang.UnexpectedEndOfInput:
		return true

	default:
		return false
	}
}

func renderError(err error) string {
	var diag *lang.Diagnostic
	if errors.As(err, &diag) {
		return strings.TrimRight(diag.Snippet(), "\n")
	}

	return "error: " + err.Error()
}

// render formats each top-level expression of prog.
func render(prog *lang.Program, format outputFormat) (string, error) {
	var b strings.Builder

	for i, expr := range prog.Exprs {
		if i > 0 && format != formatNative {
			b.WriteString("\n")
		}

		switch format {
		case formatNative:
			b.WriteString(lang.FormatNode(expr))
			b.WriteString("\n")

		case formatJSON:
			buf, err := json.MarshalIndent(lang.ToNative(expr), "", "  ")
			if err != nil {
				return "", err
			}

			b.Write(buf)
			b.WriteString("\n")

		default:
			if err := lang.Dump(&b, expr); err != nil {
				return "", err
			}
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))

	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "f", "format":
		if len(args) == 0 {
			return m, tea.Sequence(echo, tea.Println(hintStyle.Render("format: "+string(m.format))))
		}

		switch f := outputFormat(args[0]); f {
		case formatAST, formatNative, formatJSON:
			m.format = f

			return m, echo

		default:
			return m, tea.Sequence(echo, tea.Println(
				errorStyle.Render("Unknown format: "+args[0]+" (ast, native, json)")))
		}

	case "r", "reset":
		m.session.reset()
		m.pending = ""
		m.matches = nil

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("bindings cleared")))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

func (m model) listBindings() string {
	lets := m.session.lets()
	if len(lets) == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	var b strings.Builder

	for i, let := range lets {
		if i > 0 {
			b.WriteString("\n")
		}

		name := let.Name
		if let.Mutable {
			name = "!" + name
		}

		fmt.Fprintf(&b, "  %s %s", name, hintStyle.Render("= "+preview(let.Value)))
	}

	return b.String()
}

// historyPrev recalls the previous entry. With sameMode, entries from the
// other mode are skipped; otherwise the mode follows the entry.
func (m model) historyPrev(sameMode bool) model {
	for i := m.historyIdx - 1; i >= 0; i-- {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		return m.recall(i, entry)
	}

	return m
}

// historyNext recalls the next entry, or clears the input past the end.
func (m model) historyNext(sameMode bool) model {
	for i := m.historyIdx + 1; i < m.history.Len(); i++ {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		return m.recall(i, entry)
	}

	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

func (m model) recall(i int, entry HistoryEntry) model {
	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	m = m.withPrompt()

	if mode == modeEval {
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}

// withPrompt sets the prompt for the current mode and continuation state.
func (m model) withPrompt() model {
	switch {
	case m.mode == modeCtrl:
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)

	case m.pending != "":
		m.input.Prompt = promptStyle.Render(contPrompt)

	default:
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}

	return m
}
