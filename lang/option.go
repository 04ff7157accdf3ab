package lang

import (
	"github.com/ardnew/molang/log"
)

// DefaultMaxDepth is the default maximum nesting depth accepted by the
// compiler. Users may modify this before compiling to change the default.
var DefaultMaxDepth = 256

// config holds compile and run options.
type config struct {
	logger    log.Logger
	maxDepth  int
	leftAssoc bool
	noCache   bool
}

// Option configures compilation or evaluation behavior.
type Option func(*config)

// WithMaxDepth sets the maximum nesting depth of parentheses, brackets,
// braces, and call arguments. Deeper input fails with [ErrSyntax]. Long
// operator chains at one level are not nesting.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithLeftAssociative makes arithmetic and equality operators of equal
// precedence group from the left, so "8 - 3 - 2" is 3 rather than 7.
func WithLeftAssociative(enable bool) Option {
	return func(c *config) {
		c.leftAssoc = enable
	}
}

// WithCache controls whether [Compile] reuses blocks compiled from identical
// source and options. Caching is enabled by default.
func WithCache(enable bool) Option {
	return func(c *config) {
		c.noCache = !enable
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
