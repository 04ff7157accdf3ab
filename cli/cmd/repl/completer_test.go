package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/molang/lang"
)

func testEnvironment() *lang.Environment {
	env := lang.NewEnvironment()
	env.Variables[lang.DefaultVariable] = lang.Struct{
		"pos":   lang.Struct{"x": lang.Number(1), "y": lang.Number(2)},
		"items": lang.NewArray(lang.Number(1)),
	}

	return env
}

func TestWordBounds_Operators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "math", 4, "math", 0, 4},
		{"member", "math.ab", 7, "ab", 5, 7},
		{"after_plus", "v.x + ma", 8, "ma", 6, 8},
		{"after_minus", "a-b", 3, "b", 2, 3},
		{"argument", "math.clamp(v.x, mi", 18, "mi", 16, 18},
		{"in_block", "{v.x = ma", 9, "ma", 7, 9},
		{"in_ternary", "v.x ? ma", 8, "ma", 6, 8},
		{"empty_at_boundary", "v.x + ", 6, "", 6, 6},
		{"empty_after_dot", "v.", 2, "", 2, 2},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"past_end", "foo", 10, "foo", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "ma", 0, ""},
		{"after_space", "a + ", 4, ""},
		{"chain", "v.pos.x", 6, "v.pos"},
		{"after_operator", "x + v.pos.", 10, "v.pos"},
		{"after_paren", "(v.a.b.", 7, "v.a.b"},
		{"argument", "math.min(v.", 11, "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	env := testEnvironment()

	tests := []struct {
		parent string
		want   []string
	}{
		{"", []string{"array", "math", "v", "variable"}},
		{"v", []string{"items", "pos"}},
		{"variable.pos", []string{"x", "y"}},
		{"v.items", []string{"length", "push"}},
		{"v.pos.x", nil},
		{"nope", nil},
	}

	for _, tt := range tests {
		if got := childCandidates(env, tt.parent); !slices.Equal(got, tt.want) {
			t.Errorf("childCandidates(%q) = %v, want %v", tt.parent, got, tt.want)
		}
	}

	if got := childCandidates(env, "math"); !slices.Contains(got, "clamp") {
		t.Errorf("expected math members, got %v", got)
	}
}

func TestComputeMatches(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		input      string
		wantParent string
		want       []string
	}{
		{"", "", nil},
		{"v.", "v", []string{"items", "pos"}},
		{"v.po", "v", []string{"pos"}},
		{"math.cla", "math", []string{"clamp"}},
		{"1 + ", "", nil},
	}

	for _, tt := range tests {
		setInput(&m, tt.input)

		matches, parent, _, _ := m.computeMatches()
		if parent != tt.wantParent {
			t.Errorf("%q: parent %q, want %q", tt.input, parent, tt.wantParent)
		}

		var got []string
		for _, match := range matches {
			got = append(got, match.Str)
		}

		if !slices.Equal(got, tt.want) {
			t.Errorf("%q: matches %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestComputeMatches_Commands(t *testing.T) {
	m := newTestModel(t).switchToMode(modeCtrl)

	setInput(&m, "res")

	matches, _, _, _ := m.computeMatches()
	if len(matches) == 0 || matches[0].Str != "reset" {
		t.Errorf("expected reset first, got %v", matches)
	}

	setInput(&m, "vars ma")

	if matches, _, _, _ := m.computeMatches(); matches != nil {
		t.Errorf("expected no completion of command arguments, got %v", matches)
	}
}

func TestModel_IsFunction(t *testing.T) {
	m := newTestModel(t)

	if !m.isFunction("array") || m.isFunction("math") {
		t.Error("unexpected top-level result")
	}

	m.parent = "math"
	if !m.isFunction("abs") || m.isFunction("pi") {
		t.Error("unexpected math member result")
	}

	m.parent = "v.items"
	if !m.isFunction("push") || m.isFunction("length") {
		t.Error("unexpected array member result")
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("m", []string{"min", "max", "clamp"})
	never := func(string) bool { return false }

	if got := renderCandidateBar(nil, -1, false, 80, never); got != "" {
		t.Errorf("expected empty bar, got %q", got)
	}

	bar := renderCandidateBar(matches, -1, false, 80, never)
	for _, want := range []string{"m", "a", "x"} {
		if !strings.Contains(bar, want) {
			t.Errorf("expected %q in %q", want, bar)
		}
	}

	if narrow := renderCandidateBar(matches, -1, false, 6, never); !strings.Contains(narrow, "...") {
		t.Errorf("expected ellipsis, got %q", narrow)
	}

	suffixed := renderCandidateBar(matches[:1], -1, false, 80, func(string) bool { return true })
	if !strings.Contains(suffixed, "()") {
		t.Errorf("expected function suffix, got %q", suffixed)
	}
}

func TestPreview(t *testing.T) {
	env := testEnvironment()
	env.Variables["long"] = lang.Struct{
		"aaaaaaaaaa": lang.Number(1), "bbbbbbbbbb": lang.Number(2),
		"cccccccccc": lang.Number(3), "dddddddddd": lang.Number(4),
	}

	tests := []struct {
		name, kind, preview string
	}{
		{"v", "alias", "→ variable"},
		{"math", "constant", ""},
		{"variable", "variable", "Struct{items: array(1), pos: {x: 1, y: 2}}"},
	}

	for _, tt := range tests {
		if got := kindOf(env, tt.name); got != tt.kind {
			t.Errorf("kindOf(%q) = %q, want %q", tt.name, got, tt.kind)
		}

		if tt.preview == "" {
			continue
		}

		if got := preview(env, tt.name); got != tt.preview {
			t.Errorf("preview(%q) = %q, want %q", tt.name, got, tt.preview)
		}
	}

	if got := preview(env, "long"); len([]rune(got)) != previewWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated preview, got %q", got)
	}
}
