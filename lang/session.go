package lang

import (
	"context"
)

// Session evaluates source text against one long-lived [Environment], the
// way an interactive prompt does.
type Session struct {
	env  *Environment
	opts []Option
}

// NewSession returns a session over [NewEnvironment]. The options apply to
// every compilation and run.
func NewSession(opts ...Option) *Session {
	return &Session{env: NewEnvironment(), opts: opts}
}

// Environment returns the environment the session evaluates in.
func (s *Session) Environment() *Environment { return s.env }

// Reset discards every assignment made through the session.
func (s *Session) Reset() { s.env = NewEnvironment() }

// Exec compiles and evaluates code.
func (s *Session) Exec(ctx context.Context, code string) (Value, error) {
	return s.env.Eval(ctx, code, s.opts...)
}

// Run compiles and evaluates code and returns the debug form of the result,
// or "error: " followed by the error text.
func (s *Session) Run(ctx context.Context, code string) string {
	v, err := s.Exec(ctx, code)
	if err != nil {
		return "error: " + err.Error()
	}

	return Describe(v)
}
