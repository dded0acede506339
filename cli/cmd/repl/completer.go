package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/dyn-lang/dyn/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "format", "reset", "clear", "quit"}

// isWordBoundary reports whether r ends an identifier. Dyn identifiers are
// lowercase ASCII letters only.
func isWordBoundary(r rune) bool { return r < 'a' || r > 'z' }

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset lies inside a string literal, counting
// quotes from the start of input (Dyn strings have no escapes).
func inString(input string, offset int) bool {
	return strings.Count(input[:offset], `"`)%2 == 1
}

// candidates returns the completion candidates for the current mode:
// control commands, or keywords followed by the names bound in the session.
func (m model) candidates() []string {
	if m.mode == modeCtrl {
		return ctrlCommands
	}

	names := lang.Keywords()

	for _, name := range m.session.bindings() {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, along with the word boundaries.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" || (m.mode == modeEval && inString(input, wordStart)) {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, m.candidates()), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		reserve := ellipsisWidth
		if last {
			reserve = 0
		}

		if i > 0 && used+entryWidth+reserve > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Keywords use their own color.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	if lang.IsKeyword(match.Str) {
		baseStyle = keywordStyle
	}

	highlightStyle := baseStyle.Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
