package lang

import (
	"errors"
	"strconv"
	"unicode"
)

// lexState is the state of the lexical state machine.
type lexState int

const (
	lexNormal     lexState = iota // dispatch on character class
	lexNumber                     // digits, one '.', '_' separators
	lexIdentifier                 // one name of an access chain
	lexAccess                     // between names of an access chain
	lexBracket                    // capturing call arguments or an index
	lexBlock                      // capturing a brace block
	lexDouble                     // '?' or '=' awaiting its second character
)

// action tells the driver what to do with the current character.
type action int

const (
	advance action = iota // consume it
	hold                  // deliver it again to the next state
	done                  // stop
)

const eofText = "EOF"

type lexer struct {
	c      *compiler
	src    []rune
	tokens []Token
	buf    []rune
	chain  []Link

	base  int // offset of src[0] within the compiled source
	depth int
	pos   int
	start int // start of the current capture or token
	head  int // start of the current access chain
	nest  int

	state lexState
	link  LinkKind

	open, close rune
	pair        rune
	one, two    Operator

	point bool
}

// lex converts src into tokens. Call arguments, indices, and blocks are
// lexed by recursive calls on the captured text at depth+1.
func (c *compiler) lex(src []rune, base, depth int) ([]Token, error) {
	if depth > c.maxDepth {
		return nil, c.tooDeep()
	}

	l := &lexer{c: c, src: src, base: base, depth: depth}

	for {
		var r rune

		eof := l.pos >= len(l.src)
		if !eof {
			r = l.src[l.pos]
		}

		act, err := l.step(r, eof)
		if err != nil {
			return nil, err
		}

		switch act {
		case advance:
			l.pos++
		case done:
			return l.tokens, nil
		case hold:
		}
	}
}

// step is the transition function.
func (l *lexer) step(r rune, eof bool) (action, error) {
	switch l.state {
	case lexNumber:
		return l.number(r, eof)
	case lexIdentifier:
		return l.identifier(r, eof)
	case lexAccess:
		return l.access(r, eof)
	case lexBracket:
		return l.bracket(r, eof)
	case lexBlock:
		return l.block(r, eof)
	case lexDouble:
		return l.double(r, eof)
	default:
		return l.normal(r, eof)
	}
}

func (l *lexer) normal(r rune, eof bool) (action, error) {
	if eof {
		return done, nil
	}

	l.start = l.pos

	switch {
	case unicode.IsSpace(r):
		return advance, nil

	case isDigit(r):
		l.buf, l.point = l.buf[:0], false
		l.state = lexNumber

		return hold, nil

	case isIdentStart(r):
		l.buf, l.chain, l.head = l.buf[:0], nil, l.pos
		l.state = lexIdentifier

		return hold, nil
	}

	switch r {
	case '(':
		l.emit(Token{Kind: TokenOpen}, l.pos)
	case ')':
		l.emit(Token{Kind: TokenClose}, l.pos)
	case ',':
		l.emit(Token{Kind: TokenComma}, l.pos)
	case ';':
		l.emit(Token{Kind: TokenSemicolon}, l.pos)
	case '+':
		l.operator(OpAdd)
	case '-':
		l.operator(OpSubtract)
	case '*':
		l.operator(OpMultiply)
	case '/':
		l.operator(OpDivide)
	case '!':
		l.operator(OpNot)
	case ':':
		l.operator(OpColon)
	case '?':
		l.one, l.two, l.pair = OpConditional, OpNullishCoalescing, r
		l.state = lexDouble
	case '=':
		l.one, l.two, l.pair = OpAssignment, OpEquality, r
		l.state = lexDouble
	case '{':
		l.capture(lexBlock, 0, '{', '}')
	default:
		return advance, expectation(string(r), "anything else", l.base+l.pos)
	}

	return advance, nil
}

func (l *lexer) number(r rune, eof bool) (action, error) {
	switch {
	case eof:
	case isDigit(r):
		l.buf = append(l.buf, r)

		return advance, nil

	case r == '_':
		return advance, nil

	case r == '.':
		if l.point {
			return advance, expectation(".", "digit", l.base+l.pos)
		}

		l.point = true
		l.buf = append(l.buf, r)

		return advance, nil
	}

	f, err := strconv.ParseFloat(string(l.buf), 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return advance, expectation(string(l.buf), "number", l.base+l.start)
	}

	l.emit(Token{Kind: TokenNumber, Number: float32(f)}, l.start)
	l.state = lexNormal

	return hold, nil
}

func (l *lexer) identifier(r rune, eof bool) (action, error) {
	if !eof {
		switch {
		case isIdentPart(r):
			l.buf = append(l.buf, r)

			return advance, nil

		case len(l.buf) == 0 && unicode.IsSpace(r):
			return advance, nil
		}
	}

	if len(l.buf) == 0 {
		return advance, expectation(found(r, eof), "identifier", l.base+l.pos)
	}

	l.chain = append(l.chain, Link{Kind: LinkName, Name: string(l.buf)})
	l.state = lexAccess

	return hold, nil
}

func (l *lexer) access(r rune, eof bool) (action, error) {
	if eof || (l.isReturn() && r != '.') {
		l.finishChain()

		return hold, nil
	}

	switch {
	case r == '.':
		l.buf = l.buf[:0]
		l.state = lexIdentifier

		return advance, nil

	case r == '(':
		l.capture(lexBracket, LinkCall, '(', ')')

		return advance, nil

	case r == '[':
		l.capture(lexBracket, LinkIndex, '[', ']')

		return advance, nil

	case unicode.IsSpace(r):
		return advance, nil
	}

	l.finishChain()

	return hold, nil
}

func (l *lexer) bracket(r rune, eof bool) (action, error) {
	if eof {
		return advance, expectation(eofText, string(l.close), l.base+l.pos)
	}

	switch r {
	case l.open:
		l.nest++

	case l.close:
		if l.nest == 0 {
			tokens, err := l.c.lex(l.buf, l.base+l.start, l.depth+1)
			if err != nil {
				return advance, err
			}

			l.chain = append(l.chain, Link{Kind: l.link, Tokens: tokens})
			l.state = lexAccess

			return advance, nil
		}

		l.nest--
	}

	l.buf = append(l.buf, r)

	return advance, nil
}

func (l *lexer) block(r rune, eof bool) (action, error) {
	if eof {
		return advance, expectation(eofText, "}", l.base+l.pos)
	}

	switch r {
	case '{':
		l.nest++

	case '}':
		if l.nest == 0 {
			tokens, err := l.c.lex(l.buf, l.base+l.start, l.depth+1)
			if err != nil {
				return advance, err
			}

			b, err := l.c.split(tokens, l.depth+1)
			if err != nil {
				return advance, err
			}

			l.emit(Token{Kind: TokenBlock, Block: b}, l.start-1)
			l.state = lexNormal

			return advance, nil
		}

		l.nest--
	}

	l.buf = append(l.buf, r)

	return advance, nil
}

func (l *lexer) double(r rune, eof bool) (action, error) {
	l.state = lexNormal

	if !eof && r == l.pair {
		l.operator(l.two)

		return advance, nil
	}

	l.operator(l.one)

	return hold, nil
}

func (l *lexer) capture(state lexState, kind LinkKind, open, close rune) {
	l.state, l.link = state, kind
	l.open, l.close = open, close
	l.nest = 0
	l.buf = l.buf[:0]
	l.start = l.pos + 1
}

// isReturn reports whether the chain so far is the bare keyword "return".
func (l *lexer) isReturn() bool {
	return len(l.chain) == 1 &&
		l.chain[0].Kind == LinkName &&
		l.chain[0].Name == OpReturn.String()
}

func (l *lexer) finishChain() {
	if l.isReturn() {
		l.emit(Token{Kind: TokenOperator, Operator: OpReturn}, l.head)
	} else {
		l.emit(Token{Kind: TokenAccess, Chain: l.chain}, l.head)
	}

	l.chain = nil
	l.state = lexNormal
}

func (l *lexer) operator(op Operator) {
	l.emit(Token{Kind: TokenOperator, Operator: op}, l.start)
}

func (l *lexer) emit(t Token, at int) {
	t.Offset = l.base + at
	l.tokens = append(l.tokens, t)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func found(r rune, eof bool) string {
	if eof {
		return eofText
	}

	return string(r)
}
