package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/molang/lang"
)

// builtinParams holds the parameter names of the builtin functions, keyed by
// function name. A leading "..." marks a variadic parameter.
var builtinParams = map[string][]string{
	"array":      {"...items"},
	"push":       {"...items"},
	"math.abs":   {"x"},
	"math.ceil":  {"x"},
	"math.floor": {"x"},
	"math.round": {"x"},
	"math.trunc": {"x"},
	"math.sqrt":  {"x"},
	"math.sin":   {"degrees"},
	"math.cos":   {"degrees"},
	"math.pow":   {"base", "exponent"},
	"math.clamp": {"value", "min", "max"},
	"math.lerp":  {"start", "end", "t"},
	"math.min":   {"...values"},
	"math.max":   {"...values"},
}

// hostParams are the parameters shown for functions without known names,
// such as those compiled from environment files.
var hostParams = []string{"...args"}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee path as written, e.g. "math.clamp" or "v.items.push"
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside the argument list
}

// detectFunctionCall reports the innermost call whose argument list contains
// the cursor, and the index of the argument under the cursor.
//
// Parentheses and commas are ASCII, so the input is scanned by byte.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open := -1
	depth := 0
	argIndex := 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')', ']':
			depth++

		case '(', '[':
			if depth > 0 {
				depth--
			} else if input[i] == '(' {
				open = i
			} else {
				// Inside an index expression, not an argument list.
				return functionCall{}
			}

		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 && isNameByte(input[start-1]) {
		start--
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

func isNameByte(c byte) bool {
	return c == '.' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// getSignature returns the signature of the function a call path resolves to
// in env, and its parameter names. It returns "" when the path does not name
// a function.
func getSignature(
	env *lang.Environment,
	name string,
) (signature string, params []string) {
	if parent, method, ok := cutLast(name); ok && method == "push" {
		if v, ok := env.Lookup(parent); ok {
			if x, ok := v.(*lang.External); ok {
				if _, ok := x.Object().(*lang.Array); ok {
					params = builtinParams["push"]

					return formatSignature(name, params), params
				}
			}
		}
	}

	v, ok := env.Lookup(name)
	if !ok {
		return "", nil
	}

	fn, ok := v.(*lang.Function)
	if !ok {
		return "", nil
	}

	params, ok = builtinParams[fn.Name()]
	if !ok {
		params = hostParams
	}

	return formatSignature(name, params), params
}

// cutLast splits a dotted path at its last dot.
func cutLast(path string) (parent, last string, ok bool) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path, false
	}

	return path[:i], path[i+1:], true
}

// formatSignature formats a function signature with parameter names.
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted. A variadic parameter stays highlighted for every
// argument from its position on.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		if currentArgIdx == i || (variadic && currentArgIdx > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
