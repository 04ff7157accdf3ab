package lang

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func lexString(t *testing.T, src string) ([]Token, error) {
	t.Helper()

	c := &compiler{config: makeConfig()}

	return c.lex([]rune(src), 0, 0)
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}

	return out
}

func TestLex_TokenKinds(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenKind
	}{
		{"1 + 2", []TokenKind{TokenNumber, TokenOperator, TokenNumber}},
		{"a ?? b", []TokenKind{TokenAccess, TokenOperator, TokenAccess}},
		{"(a)", []TokenKind{TokenOpen, TokenAccess, TokenClose}},
		{"1; 2", []TokenKind{TokenNumber, TokenSemicolon, TokenNumber}},
		{"return 5", []TokenKind{TokenOperator, TokenNumber}},
		{"returned", []TokenKind{TokenAccess}},
		{"{1; 2}", []TokenKind{TokenBlock}},
		{"f(1, 2)", []TokenKind{TokenAccess}},
		{"", nil},
		{"  \t\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens, err := lexString(t, tt.src)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if got := kinds(tokens); !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLex_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want []Operator
	}{
		{"+ - * /", []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide}},
		{"! ? :", []Operator{OpNot, OpConditional, OpColon}},
		{"?? = ==", []Operator{OpNullishCoalescing, OpAssignment, OpEquality}},
		{"?=", []Operator{OpConditional, OpAssignment}},
		{"=?", []Operator{OpAssignment, OpConditional}},
		{"return", []Operator{OpReturn}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens, err := lexString(t, tt.src)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			got := make([]Operator, len(tokens))
			for i, tok := range tokens {
				got[i] = tok.Operator
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLex_Numbers(t *testing.T) {
	tests := []struct {
		src  string
		want float32
	}{
		{"0", 0},
		{"42", 42},
		{"1.5", 1.5},
		{"1_000", 1000},
		{"1_000.25", 1000.25},
		{"3.", 3},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens, err := lexString(t, tt.src)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if len(tokens) != 1 || tokens[0].Kind != TokenNumber {
				t.Fatalf("expected one number, got %v", tokens)
			}

			if tokens[0].Number != tt.want {
				t.Errorf("expected %v, got %v", tt.want, tokens[0].Number)
			}
		})
	}
}

func TestLex_AccessChain(t *testing.T) {
	tokens, err := lexString(t, "a . b.c[1](2, 3)")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}

	chain := tokens[0].Chain

	want := []LinkKind{LinkName, LinkName, LinkName, LinkIndex, LinkCall}
	got := make([]LinkKind, len(chain))

	for i, l := range chain {
		got[i] = l.Kind
	}

	if !slices.Equal(got, want) {
		t.Fatalf("expected links %v, got %v", want, got)
	}

	if chain[0].Name != "a" || chain[1].Name != "b" || chain[2].Name != "c" {
		t.Errorf("unexpected names %q %q %q", chain[0].Name, chain[1].Name, chain[2].Name)
	}

	if n := len(chain[4].Tokens); n != 3 {
		t.Errorf("expected 3 call tokens, got %d", n)
	}

	if s := tokens[0].String(); s != "a.b.c[1](2 , 3)" {
		t.Errorf("unexpected token text %q", s)
	}
}

func TestLex_BlockIsSplit(t *testing.T) {
	tokens, err := lexString(t, "{ v.x = 1; return v.x; }")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	b := tokens[0].Block
	if b == nil || !b.Multiple || len(b.Statements) != 2 {
		t.Fatalf("unexpected block %+v", b)
	}
}

func TestLex_Offsets(t *testing.T) {
	tokens, err := lexString(t, "ab + 12")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []int{0, 3, 5}
	for i, tok := range tokens {
		if tok.Offset != want[i] {
			t.Errorf("token %d: expected offset %d, got %d", i, want[i], tok.Offset)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		src      string
		found    string
		expected string
		offset   string
	}{
		{"1.2.3", ".", "digit", "3"},
		{"f(1", "EOF", ")", "3"},
		{"a[1", "EOF", "]", "3"},
		{"{1", "EOF", "}", "2"},
		{"#", "#", "anything else", "0"},
		{"1 + @", "@", "anything else", "4"},
		{"f(1 + #)", "#", "anything else", "6"},
		{"a.", "EOF", "identifier", "2"},
		{"a.+", "+", "identifier", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := lexString(t, tt.src)
			if !errors.Is(err, ErrTokenise) {
				t.Fatalf("expected ErrTokenise, got %v", err)
			}

			var ee *Error

			errors.As(err, &ee)

			for key, want := range map[string]string{
				"found":    tt.found,
				"expected": tt.expected,
				"offset":   tt.offset,
			} {
				if got, _ := ee.Attr(key); got != want {
					t.Errorf("%s: expected %q, got %q", key, want, got)
				}
			}
		})
	}
}

func TestLex_DepthLimit(t *testing.T) {
	deep := strings.Repeat("{", 300) + "1" + strings.Repeat("}", 300)

	_, err := Compile(t.Context(), deep, WithCache(false))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}

	calls := strings.Repeat("f(", 5) + "1" + strings.Repeat(")", 5)

	_, err = Compile(t.Context(), calls, WithMaxDepth(3), WithCache(false))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}

	if _, err := Compile(t.Context(), calls, WithCache(false)); err != nil {
		t.Fatalf("expected default depth to accept %q: %v", calls, err)
	}
}

func TestCompile_FlatChainIsNotNesting(t *testing.T) {
	flat := strings.Repeat("1 + ", 300) + "1"

	b, err := Compile(t.Context(), flat, WithMaxDepth(2), WithCache(false))
	if err != nil {
		t.Fatalf("expected flat chain to compile: %v", err)
	}

	v, err := NewEnvironment().Run(t.Context(), b)
	if err != nil || !Equal(v, Number(301)) {
		t.Fatalf("expected 301, got %v (%v)", v, err)
	}

	parens := strings.Repeat("(", 4) + "1" + strings.Repeat(")", 4)

	if _, err := Compile(t.Context(), parens, WithMaxDepth(3), WithCache(false)); !errors.Is(err, ErrSyntax) {
		t.Errorf("expected parentheses to count as nesting, got %v", err)
	}

	if _, err := Compile(t.Context(), parens, WithMaxDepth(4), WithCache(false)); err != nil {
		t.Errorf("expected %q within depth 4: %v", parens, err)
	}

	long := strings.Repeat("1 + ", maxOperatorChain+1) + "1"

	_, err = Compile(t.Context(), long, WithCache(false))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error, got %T", err)
	}

	if msg, _ := ee.Attr("message"); msg != "expression too long" {
		t.Errorf("unexpected message %q", msg)
	}
}
