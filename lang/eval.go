package lang

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/molang/log"
)

// flow reports how evaluation of an expression completed.
type flow int

const (
	flowNormal flow = iota
	flowReturn      // a return statement was evaluated; skip everything after it
)

// evaluator walks expression trees against one environment.
type evaluator struct {
	ctx       context.Context
	logger    log.Logger
	constants Struct
	variables Struct
	aliases   map[string]string
	trace     bool
}

func (e *evaluator) block(b *Block) (Value, flow, error) {
	if !b.Multiple {
		if len(b.Statements) == 0 {
			return Number(0), flowNormal, nil
		}

		return e.statement(0, b.Statements[0])
	}

	for i, stmt := range b.Statements {
		v, f, err := e.statement(i, stmt)
		if err != nil {
			return nil, f, err
		}

		if f == flowReturn {
			return v, flowReturn, nil
		}
	}

	return Number(0), flowNormal, nil
}

func (e *evaluator) statement(i int, x Expr) (Value, flow, error) {
	v, f, err := e.eval(x)

	if e.trace {
		attrs := []slog.Attr{
			slog.Int("index", i),
			slog.String("source", x.String()),
		}

		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		} else {
			attrs = append(attrs,
				slog.String("result", Describe(v)),
				slog.Bool("return", f == flowReturn),
			)
		}

		e.logger.TraceContext(e.ctx, "statement", attrs...)
	}

	return v, f, err
}

func (e *evaluator) eval(x Expr) (Value, flow, error) {
	switch n := x.(type) {
	case *Literal:
		return Copy(n.Value), flowNormal, nil
	case *Unary:
		return e.unary(n)
	case *Binary:
		return e.binary(n)
	case *Access:
		return e.read(n)
	case *BlockExpr:
		return e.block(n.Block)
	}

	return nil, flowNormal, syntaxError(fmt.Sprintf("unknown expression %T", x))
}

func (e *evaluator) unary(n *Unary) (Value, flow, error) {
	v, f, err := e.eval(n.Operand)
	if err != nil || f == flowReturn {
		return v, f, err
	}

	if n.Op == OpReturn {
		return v, flowReturn, nil
	}

	num, ok := v.(Number)
	if !ok {
		return nil, flowNormal, TypeError(TypeNumber.String(), v)
	}

	switch n.Op {
	case OpNot:
		return Bool(num == 0), flowNormal, nil
	case OpSubtract:
		return -num, flowNormal, nil
	}

	return nil, flowNormal, syntaxError("unknown prefix operator " + n.Op.String())
}

func (e *evaluator) binary(n *Binary) (Value, flow, error) {
	switch n.Op {
	case OpAssignment:
		return e.assign(n)

	case OpConditional:
		return e.conditional(n)

	case OpColon:
		return nil, flowNormal, syntaxError("colon outside of ternary")

	case OpNullishCoalescing:
		l, f, err := e.eval(n.Left)
		if err != nil || f == flowReturn || !IsNull(l) {
			return l, f, err
		}

		return e.eval(n.Right)
	}

	l, f, err := e.eval(n.Left)
	if err != nil || f == flowReturn {
		return l, f, err
	}

	r, f, err := e.eval(n.Right)
	if err != nil || f == flowReturn {
		return r, f, err
	}

	if n.Op == OpEquality {
		return Bool(Equal(l, r)), flowNormal, nil
	}

	x, ok := l.(Number)
	if !ok {
		return nil, flowNormal, TypeError(TypeNumber.String(), l)
	}

	y, ok := r.(Number)
	if !ok {
		return nil, flowNormal, TypeError(TypeNumber.String(), r)
	}

	switch n.Op {
	case OpAdd:
		return x + y, flowNormal, nil
	case OpSubtract:
		return x - y, flowNormal, nil
	case OpMultiply:
		return x * y, flowNormal, nil
	case OpDivide:
		return x / y, flowNormal, nil
	}

	return nil, flowNormal, syntaxError("unknown binary operator " + n.Op.String())
}

func (e *evaluator) conditional(n *Binary) (Value, flow, error) {
	branches, ok := n.Right.(*Binary)
	if !ok || branches.Op != OpColon {
		return nil, flowNormal, syntaxError("expected colon to close ternary")
	}

	c, f, err := e.eval(n.Left)
	if err != nil || f == flowReturn {
		return c, f, err
	}

	num, ok := c.(Number)
	if !ok {
		return nil, flowNormal, TypeError(TypeNumber.String(), c)
	}

	if num != 0 {
		return e.eval(branches.Left)
	}

	return e.eval(branches.Right)
}

// read evaluates an access chain for its value.
//
// A name step on an External records the object and property as a pending
// receiver, so that an immediately following call step dispatches a method
// call instead of calling the property's value.
func (e *evaluator) read(a *Access) (Value, flow, error) {
	var (
		cur    Value = Null{}
		recv   *External
		method string
	)

	for i, step := range a.Steps {
		pending, name := recv, method
		recv, method = nil, ""

		switch step.Kind {
		case StepName:
			if i == 0 {
				v, err := e.resolve(step.Name)
				if err != nil {
					return nil, flowNormal, err
				}

				cur = v

				continue
			}

			switch c := cur.(type) {
			case Struct:
				cur = normalize(c[step.Name])
			case *External:
				cur = normalize(c.obj.Get(step.Name))
				recv, method = c, step.Name
			case Null:
			default:
				return nil, flowNormal, BadAccess(".", cur)
			}

		case StepIndex:
			ext, ok := cur.(*External)
			if !ok {
				return nil, flowNormal, BadAccess("[]", cur)
			}

			idx, f, err := e.eval(step.Index)
			if err != nil || f == flowReturn {
				return idx, f, err
			}

			v, err := ext.obj.IndexGet(idx)
			if err != nil {
				return nil, flowNormal, e.host(err)
			}

			cur = normalize(v)

		case StepCall:
			fn, isFunc := cur.(*Function)
			if pending == nil && !isFunc {
				return nil, flowNormal, BadAccess("()", cur)
			}

			args, f, err := e.args(step.Args)
			if err != nil {
				return nil, f, err
			}

			if f == flowReturn {
				return args[0], f, nil
			}

			var v Value

			if pending != nil {
				v, err = pending.obj.Call(name, args)
			} else {
				v, err = fn.Call(args)
			}

			if err != nil {
				return nil, flowNormal, e.host(err)
			}

			cur = normalize(v)
		}
	}

	return Copy(cur), flowNormal, nil
}

// args evaluates call arguments left to right. When an argument returns,
// the returned value is the only element of the result.
func (e *evaluator) args(exprs []Expr) ([]Value, flow, error) {
	out := make([]Value, 0, len(exprs))

	for _, x := range exprs {
		v, f, err := e.eval(x)
		if err != nil {
			return nil, f, err
		}

		if f == flowReturn {
			return []Value{v}, f, nil
		}

		out = append(out, v)
	}

	return out, flowNormal, nil
}

// resolve looks up the root of an access chain in variables, then constants.
func (e *evaluator) resolve(name string) (Value, error) {
	canon := e.canonical(name)

	if v, ok := e.variables[canon]; ok {
		return normalize(v), nil
	}

	if v, ok := e.constants[canon]; ok {
		return normalize(v), nil
	}

	return nil, variableNotFound(name)
}

func (e *evaluator) canonical(name string) string {
	if c, ok := e.aliases[name]; ok {
		return c
	}

	return name
}

func (e *evaluator) host(err error) error {
	return hostError(err, ErrFunction, slog.String("message", err.Error()))
}
