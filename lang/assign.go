package lang

import (
	"log/slog"
	"slices"
)

// slot is an assignable location found by walking an access chain.
type slot interface {
	load() (Value, error)
	store(v Value) error
}

// mapSlot is a key of a struct. Storing writes the struct back through its
// owner, so structs held by externals observe the change.
type mapSlot struct {
	m     Struct
	owner slot
	key   string
}

func (s *mapSlot) load() (Value, error) { return normalize(s.m[s.key]), nil }

func (s *mapSlot) store(v Value) error {
	s.m[s.key] = v

	if s.owner != nil {
		return s.owner.store(s.m)
	}

	return nil
}

type propertySlot struct {
	ext  *External
	name string
}

func (s *propertySlot) load() (Value, error) {
	return normalize(s.ext.obj.Get(s.name)), nil
}

func (s *propertySlot) store(v Value) error { return s.ext.obj.Set(s.name, v) }

type indexSlot struct {
	ext   *External
	index Value
}

func (s *indexSlot) load() (Value, error) {
	v, err := s.ext.obj.IndexGet(s.index)

	return normalize(v), err
}

func (s *indexSlot) store(v Value) error { return s.ext.obj.IndexSet(s.index, v) }

// assign evaluates the right side, then stores a copy of it at the location
// named by the left side. Missing and null struct keys along the path become
// empty structs.
func (e *evaluator) assign(n *Binary) (Value, flow, error) {
	target, ok := n.Left.(*Access)
	if !ok {
		return nil, flowNormal, NotAssignable(n.Left.String())
	}

	v, f, err := e.eval(n.Right)
	if err != nil || f == flowReturn {
		return v, f, err
	}

	s, ret, f, err := e.locate(target)
	if err != nil || f == flowReturn {
		return ret, f, err
	}

	if err := s.store(Copy(v)); err != nil {
		return nil, flowNormal, e.host(err)
	}

	if e.trace {
		e.logger.TraceContext(
			e.ctx,
			"assigned",
			slog.String("target", target.String()),
			slog.String("value", Describe(v)),
		)
	}

	return Copy(v), flowNormal, nil
}

// locate walks a to the slot it names. A chain with a call anywhere is
// rejected before the walk creates any intermediate struct.
func (e *evaluator) locate(a *Access) (slot, Value, flow, error) {
	if len(a.Steps) == 0 || a.Steps[0].Kind != StepName ||
		slices.ContainsFunc(a.Steps, isCall) {
		return nil, nil, flowNormal, NotAssignable(a.String())
	}

	root := a.Steps[0].Name
	canon := e.canonical(root)

	if _, ok := e.variables[canon]; !ok {
		if _, ok := e.constants[canon]; ok {
			return nil, nil, flowNormal, NotAssignable(root)
		}

		return nil, nil, flowNormal, variableNotFound(root)
	}

	var s slot = &mapSlot{m: e.variables, key: canon}

	for _, step := range a.Steps[1:] {
		cur, err := s.load()
		if err != nil {
			return nil, nil, flowNormal, e.host(err)
		}

		switch step.Kind {
		case StepName:
			switch c := cur.(type) {
			case Null:
				m := Struct{}
				if err := s.store(m); err != nil {
					return nil, nil, flowNormal, e.host(err)
				}

				s = &mapSlot{m: m, key: step.Name, owner: s}
			case Struct:
				s = &mapSlot{m: c, key: step.Name, owner: s}
			case *External:
				s = &propertySlot{ext: c, name: step.Name}
			default:
				return nil, nil, flowNormal, BadAccess(".", cur)
			}

		case StepIndex:
			ext, ok := cur.(*External)
			if !ok {
				return nil, nil, flowNormal, BadAccess("[]", cur)
			}

			idx, f, err := e.eval(step.Index)
			if err != nil || f == flowReturn {
				return nil, idx, f, err
			}

			s = &indexSlot{ext: ext, index: idx}
		}
	}

	return s, nil, flowNormal, nil
}

func isCall(s Step) bool { return s.Kind == StepCall }
