package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/molang/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "edit", "reset", "clear", "quit"}

// arrayMembers are the properties and methods of array externals.
var arrayMembers = []string{"length", "push"}

// isWordBoundary returns true if the rune delimits a word for completion
// purposes: whitespace, the member-access dot, and operator or punctuation
// characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. It returns an empty word when the cursor sits on
// a boundary (after a space, after a dot, at the start of the line).
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

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

// parentPath returns the member-access chain leading up to the word starting
// at wordStart. For input "x + v.pos.x" with the word "x" at the end, the
// parent path is "v.pos". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	if wordStart == 0 || input[wordStart-1] != '.' {
		return ""
	}

	prefix := input[:wordStart-1]

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// childCandidates returns the names that complete a word under parent. An
// empty parent yields every top-level name. Otherwise parent is resolved in
// env and the keys of a struct, or the members of an array, are returned.
func childCandidates(env *lang.Environment, parent string) []string {
	if parent == "" {
		return env.Names()
	}

	v, ok := env.Lookup(parent)
	if !ok {
		return nil
	}

	switch x := v.(type) {
	case lang.Struct:
		return slices.Sorted(maps.Keys(x))

	case *lang.External:
		if _, ok := x.Object().(*lang.Array); ok {
			return arrayMembers
		}
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, along with the member-access path and the word
// boundaries. An empty top-level word yields no matches so the usage hint
// stays visible; an empty word after a dot lists every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	parent string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		if word == "" || wordStart > 0 {
			return nil, "", wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		parent = parentPath(input, wordStart)
		candidates = childCandidates(m.session.Environment(), parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, parent, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, parent, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, parent, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), parent, wordStart, wordEnd
}

// isFunction reports whether the candidate name under the current parent
// path is callable.
func (m model) isFunction(name string) bool {
	if m.parent != "" {
		if v, ok := m.session.Environment().Lookup(m.parent); ok {
			if x, ok := v.(*lang.External); ok {
				_, isArray := x.Object().(*lang.Array)

				return isArray && name == "push"
			}
		}

		name = m.parent + "." + name
	}

	v, _ := m.session.Environment().Lookup(name)
	_, ok := v.(*lang.Function)

	return ok
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunction func(string) bool,
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
		rendered := renderCandidate(
			match, tabActive && i == suggIdx, isFunction(match.Str),
		)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		if i > 0 && used+entryWidth+ellipsisWidth > width && !last {
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
// highlighted. Functions are displayed with a "()" suffix that is not part
// of the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if function {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// kindOf names where a top-level name comes from.
func kindOf(env *lang.Environment, name string) string {
	if _, ok := env.Aliases[name]; ok {
		return "alias"
	}

	if _, ok := env.Variables[name]; ok {
		return "variable"
	}

	return "constant"
}

// previewWidth is the maximum width of a value preview.
const previewWidth = 48

// preview returns a short description of the value bound to a top-level
// name.
func preview(env *lang.Environment, name string) string {
	if target, ok := env.Aliases[name]; ok {
		return "→ " + target
	}

	v, ok := env.Lookup(name)
	if !ok {
		return "<undefined>"
	}

	s := lang.Describe(v)
	if utf8.RuneCountInString(s) > previewWidth {
		s = string([]rune(s)[:previewWidth-3]) + "..."
	}

	return s
}
