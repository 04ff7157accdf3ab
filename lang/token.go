package lang

import (
	"strconv"
	"strings"
)

// Operator is a unary or binary operator.
type Operator int

const (
	OpAdd               Operator = iota // +
	OpSubtract                          // -
	OpMultiply                          // *
	OpDivide                            // /
	OpNot                               // !
	OpConditional                       // ?
	OpColon                             // :
	OpNullishCoalescing                 // ??
	OpAssignment                        // =
	OpEquality                          // ==
	OpReturn                            // return
)

// Precedence returns the binding strength of op; lower values split first.
func (op Operator) Precedence() int {
	switch op {
	case OpAdd, OpSubtract:
		return 11
	case OpMultiply, OpDivide:
		return 12
	case OpNot:
		return 14
	case OpEquality:
		return 8
	case OpNullishCoalescing:
		return 3
	case OpConditional, OpColon, OpAssignment:
		return 2
	case OpReturn:
		return 1
	}

	return 0
}

// negatePrecedence is the precedence of a subtract in prefix position.
const negatePrecedence = 14

// TokenKind identifies the shape of a [Token].
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenOperator
	TokenOpen
	TokenClose
	TokenComma
	TokenSemicolon
	TokenAccess
	TokenBlock
)

// Token is a lexical unit. Access chains and blocks carry their already
// lexed contents.
type Token struct {
	Block    *Block
	Chain    []Link
	Offset   int
	Kind     TokenKind
	Operator Operator
	Number   float32
}

// LinkKind identifies one element of an access chain.
type LinkKind int

const (
	LinkName LinkKind = iota
	LinkIndex
	LinkCall
)

// Link is one element of an access chain: a name, or the tokens of an index
// or call argument list.
type Link struct {
	Name   string
	Tokens []Token
	Kind   LinkKind
}

func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return Number(t.Number).String()
	case TokenOperator:
		return t.Operator.String()
	case TokenOpen:
		return "("
	case TokenClose:
		return ")"
	case TokenComma:
		return ","
	case TokenSemicolon:
		return ";"
	case TokenBlock:
		return "{" + t.Block.String() + "}"
	case TokenAccess:
		var b strings.Builder

		for i, l := range t.Chain {
			switch l.Kind {
			case LinkName:
				if i > 0 {
					b.WriteByte('.')
				}

				b.WriteString(l.Name)
			case LinkIndex:
				b.WriteString("[" + joinTokens(l.Tokens, " ") + "]")
			case LinkCall:
				b.WriteString("(" + joinTokens(l.Tokens, " ") + ")")
			}
		}

		return b.String()
	}

	return "Token(" + strconv.Itoa(int(t.Kind)) + ")"
}

func joinTokens(tokens []Token, sep string) string {
	s := make([]string, len(tokens))
	for i, t := range tokens {
		s[i] = t.String()
	}

	return strings.Join(s, sep)
}
