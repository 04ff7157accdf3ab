package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// String returns source text that compiles to an equivalent block with
// default options.
func (b *Block) String() string {
	if b == nil {
		return ""
	}

	s := make([]string, len(b.Statements))
	for i, stmt := range b.Statements {
		s[i] = stmt.String()
	}

	out := strings.Join(s, "; ")
	if b.Multiple {
		out += ";"
	}

	return out
}

func (n *Literal) String() string {
	if num, ok := n.Value.(Number); ok {
		return strconv.FormatFloat(float64(num), 'f', -1, 32)
	}

	return normalize(n.Value).String()
}

func (n *Binary) String() string {
	if n.Op == OpConditional {
		if br, ok := n.Right.(*Binary); ok && br.Op == OpColon {
			return operandString(n.Left, n.Op) + " ? " +
				operandString(br.Left, OpColon) + " : " + operandString(br.Right, OpColon)
		}
	}

	return operandString(n.Left, n.Op) + " " + n.Op.String() + " " +
		operandString(n.Right, n.Op)
}

func (n *Unary) String() string {
	switch n.Op {
	case OpReturn:
		return "return " + n.Operand.String()
	default:
		return n.Op.String() + operandString(n.Operand, OpNot)
	}
}

func (n *Access) String() string {
	var b strings.Builder

	for i, step := range n.Steps {
		switch step.Kind {
		case StepName:
			if i > 0 {
				b.WriteByte('.')
			}

			b.WriteString(step.Name)

		case StepIndex:
			b.WriteString("[" + step.Index.String() + "]")

		case StepCall:
			args := make([]string, len(step.Args))
			for j, arg := range step.Args {
				args[j] = arg.String()
			}

			b.WriteString("(" + strings.Join(args, ", ") + ")")
		}
	}

	return b.String()
}

func (n *BlockExpr) String() string {
	return "{" + n.Block.String() + "}"
}

// operandString renders x as an operand of parent, parenthesizing it when
// reparsing would otherwise split at x's operator instead of parent's.
func operandString(x Expr, parent Operator) string {
	switch n := x.(type) {
	case *Binary:
		if n.Op.Precedence() <= parent.Precedence() {
			return "(" + n.String() + ")"
		}
	case *Unary:
		if n.Op == OpReturn {
			return "(" + n.String() + ")"
		}
	}

	return x.String()
}

// Format writes the statements of b one per line, each prefixed by indent.
func Format(w io.Writer, b *Block, indent string) error {
	for _, stmt := range b.Statements {
		line := indent + stmt.String()
		if b.Multiple {
			line += ";"
		}

		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the syntax tree of b as JSON. A non-empty indent
// produces one element per line.
func FormatJSON(w io.Writer, b *Block, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)

	return enc.Encode(blockNode(b))
}

// FormatYAML writes the syntax tree of b as YAML indented by the given
// number of spaces, or in flow style when indent is not positive.
func FormatYAML(ctx context.Context, w io.Writer, b *Block, indent int) error {
	opt := yaml.Indent(indent)
	if indent <= 0 {
		opt = yaml.Flow(true)
	}

	data, err := yaml.MarshalContext(ctx, blockNode(b), opt)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// Print writes b as an indented tree, one node per line.
func Print(w io.Writer, b *Block) error {
	p := &printer{w: w}
	p.block(b, 0)

	return p.err
}

func blockNode(b *Block) map[string]any {
	stmts := make([]any, len(b.Statements))
	for i, stmt := range b.Statements {
		stmts[i] = treeNode(stmt)
	}

	return map[string]any{"multiple": b.Multiple, "statements": stmts}
}

func treeNode(x Expr) any {
	switch n := x.(type) {
	case *Literal:
		return map[string]any{"literal": Native(n.Value)}

	case *Binary:
		return map[string]any{
			"op":    n.Op.String(),
			"left":  treeNode(n.Left),
			"right": treeNode(n.Right),
		}

	case *Unary:
		return map[string]any{
			"op":      n.Op.String(),
			"operand": treeNode(n.Operand),
		}

	case *Access:
		steps := make([]any, len(n.Steps))

		for i, step := range n.Steps {
			switch step.Kind {
			case StepName:
				steps[i] = map[string]any{"name": step.Name}
			case StepIndex:
				steps[i] = map[string]any{"index": treeNode(step.Index)}
			case StepCall:
				args := make([]any, len(step.Args))
				for j, arg := range step.Args {
					args[j] = treeNode(arg)
				}

				steps[i] = map[string]any{"call": args}
			}
		}

		return map[string]any{"access": steps}

	case *BlockExpr:
		return map[string]any{"block": blockNode(n.Block)}
	}

	return nil
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(
		p.w, strings.Repeat("  ", depth)+format+"\n", args...,
	)
}

func (p *printer) block(b *Block, depth int) {
	if b.Multiple {
		p.line(depth, "block (multiple)")
	} else {
		p.line(depth, "block")
	}

	for _, stmt := range b.Statements {
		p.expr(stmt, depth+1)
	}
}

func (p *printer) expr(x Expr, depth int) {
	switch n := x.(type) {
	case *Literal:
		p.line(depth, "literal %s", Describe(n.Value))

	case *Binary:
		p.line(depth, "%s", n.Op)
		p.expr(n.Left, depth+1)
		p.expr(n.Right, depth+1)

	case *Unary:
		p.line(depth, "%s (prefix)", n.Op)
		p.expr(n.Operand, depth+1)

	case *Access:
		p.line(depth, "access")

		for _, step := range n.Steps {
			switch step.Kind {
			case StepName:
				p.line(depth+1, "name %s", step.Name)
			case StepIndex:
				p.line(depth+1, "index")
				p.expr(step.Index, depth+2)
			case StepCall:
				p.line(depth+1, "call (%d)", len(step.Args))

				for _, arg := range step.Args {
					p.expr(arg, depth+2)
				}
			}
		}

	case *BlockExpr:
		p.block(n.Block, depth)
	}
}
