package lang

import (
	"log/slog"
)

// maxOperatorChain bounds the operators split along one path of the tree,
// such as the additions in a long flat sum.
const maxOperatorChain = 1 << 14

// treeify builds an expression from a flat token slice by splitting at the
// depth-0 operator of lowest precedence.
//
// Ties go to the leftmost operator, so "8 - 3 - 2" groups as 8 - (3 - 2).
// With [WithLeftAssociative], ties between binary operators of precedence 8
// and above go to the rightmost operator instead.
//
// Depth counts structural nesting: enclosing parentheses here, index and
// call arguments in access. Chain counts operator splits on the way down and
// is bounded separately by maxOperatorChain.
func (c *compiler) treeify(tokens []Token, depth, chain int) (Expr, error) {
	if chain > maxOperatorChain {
		return nil, syntaxError("expression too long").
			With(slog.Int("max_operators", maxOperatorChain))
	}

	tokens, layers := stripParens(tokens)

	if depth += layers; depth > c.maxDepth {
		return nil, c.tooDeep()
	}

	split, best, level := -1, 0, 0

	for i, t := range tokens {
		switch t.Kind {
		case TokenOpen:
			level++

		case TokenClose:
			level--
			if level < 0 {
				return nil, incomplete(tokens[i:])
			}

		case TokenOperator:
			if level > 0 {
				continue
			}

			p := precedenceAt(tokens, i)

			switch {
			case split < 0, p < best:
				split, best = i, p
			case p == best && c.leftAssoc && p >= OpEquality.Precedence() &&
				!isPrefix(tokens, i):
				split = i
			}
		}
	}

	if level != 0 {
		return nil, incomplete(tokens)
	}

	if split < 0 {
		return c.operand(tokens, depth, chain)
	}

	op := tokens[split].Operator
	left, right := tokens[:split], tokens[split+1:]

	if isPrefix(tokens, split) {
		if len(left) > 0 {
			return nil, ErrTokensBeforePrefixOperator.With(
				slog.String("operator", op.String()),
				slog.Int("offset", tokens[split].Offset),
			)
		}

		operand, err := c.treeify(right, depth, chain+1)
		if err != nil {
			return nil, err
		}

		return &Unary{Op: op, Operand: operand}, nil
	}

	lhs, err := c.treeify(left, depth, chain+1)
	if err != nil {
		return nil, err
	}

	rhs, err := c.treeify(right, depth, chain+1)
	if err != nil {
		return nil, err
	}

	return &Binary{Op: op, Left: lhs, Right: rhs}, nil
}

// operand parses a slice without operators: a single number, access chain,
// or block.
func (c *compiler) operand(tokens []Token, depth, chain int) (Expr, error) {
	if len(tokens) != 1 {
		return nil, incomplete(tokens)
	}

	switch t := tokens[0]; t.Kind {
	case TokenNumber:
		return &Literal{Value: Number(t.Number)}, nil
	case TokenAccess:
		return c.access(t.Chain, depth, chain)
	case TokenBlock:
		return &BlockExpr{Block: t.Block}, nil
	}

	return nil, incomplete(tokens)
}

func (c *compiler) access(links []Link, depth, chain int) (*Access, error) {
	steps := make([]Step, 0, len(links))

	for _, link := range links {
		switch link.Kind {
		case LinkName:
			steps = append(steps, Step{Kind: StepName, Name: link.Name})

		case LinkIndex:
			index, err := c.treeify(link.Tokens, depth+1, chain)
			if err != nil {
				return nil, err
			}

			steps = append(steps, Step{Kind: StepIndex, Index: index})

		case LinkCall:
			parts := commaSplit(link.Tokens)
			args := make([]Expr, 0, len(parts))

			for _, part := range parts {
				arg, err := c.treeify(part, depth+1, chain)
				if err != nil {
					return nil, err
				}

				args = append(args, arg)
			}

			steps = append(steps, Step{Kind: StepCall, Args: args})
		}
	}

	return &Access{Steps: steps}, nil
}

// precedenceAt returns the precedence of the operator at tokens[i],
// accounting for a subtract in prefix position.
func precedenceAt(tokens []Token, i int) int {
	op := tokens[i].Operator
	if op == OpSubtract && isPrefix(tokens, i) {
		return negatePrecedence
	}

	return op.Precedence()
}

// isPrefix reports whether the operator at tokens[i] applies to the tokens
// on its right only.
func isPrefix(tokens []Token, i int) bool {
	switch tokens[i].Operator {
	case OpNot, OpReturn:
		return true
	case OpSubtract:
		return i == 0 || tokens[i-1].Kind == TokenOperator
	}

	return false
}

// stripParens removes matched parentheses that enclose the whole slice and
// reports how many pairs it removed.
func stripParens(tokens []Token) ([]Token, int) {
	layers := 0

	for len(tokens) >= 2 &&
		tokens[0].Kind == TokenOpen &&
		tokens[len(tokens)-1].Kind == TokenClose &&
		encloses(tokens) {
		tokens = tokens[1 : len(tokens)-1]
		layers++
	}

	return tokens, layers
}

// encloses reports whether the first token's parenthesis closes at the last.
func encloses(tokens []Token) bool {
	level := 0

	for i, t := range tokens {
		switch t.Kind {
		case TokenOpen:
			level++
		case TokenClose:
			level--
			if level == 0 && i < len(tokens)-1 {
				return false
			}
		}
	}

	return level == 0
}

// commaSplit splits call arguments at depth-0 commas. An empty trailing
// argument is dropped, so an empty list yields no arguments.
func commaSplit(tokens []Token) [][]Token {
	var parts [][]Token

	level, start := 0, 0

	for i, t := range tokens {
		switch t.Kind {
		case TokenOpen:
			level++
		case TokenClose:
			level--
		case TokenComma:
			if level == 0 {
				parts = append(parts, tokens[start:i])
				start = i + 1
			}
		}
	}

	if start < len(tokens) {
		parts = append(parts, tokens[start:])
	}

	return parts
}

func incomplete(tokens []Token) *Error {
	if len(tokens) == 0 {
		return ErrIncompleteExpression
	}

	return ErrIncompleteExpression.With(slog.Int("offset", tokens[0].Offset))
}
