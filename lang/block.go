package lang

// Block is a compiled sequence of statements.
//
// A block is Multiple when its source contained at least one statement
// separator. A multiple block evaluates to the value of its first return
// statement, or 0 when none returns; a single block evaluates to its only
// statement.
type Block struct {
	Statements []Expr
	Multiple   bool
}

// split divides tokens into statements at semicolons and parses each one.
// A non-empty trailing statement after the last separator is kept.
func (c *compiler) split(tokens []Token, depth int) (*Block, error) {
	b := &Block{}
	start := 0

	for i, t := range tokens {
		if t.Kind != TokenSemicolon {
			continue
		}

		b.Multiple = true

		stmt, err := c.treeify(tokens[start:i], depth, 0)
		if err != nil {
			return nil, err
		}

		b.Statements = append(b.Statements, stmt)
		start = i + 1
	}

	if !b.Multiple || start < len(tokens) {
		stmt, err := c.treeify(tokens[start:], depth, 0)
		if err != nil {
			return nil, err
		}

		b.Statements = append(b.Statements, stmt)
	}

	return b, nil
}
