// Package lang implements a small embeddable expression language in the
// style of Molang: numeric expressions, structs, conditionals, nullish
// coalescing, property access, indexing, host function and method calls,
// assignment, and early return from multi-statement blocks.
//
// # Pipeline
//
// Source text is lexed by a character-driven state machine, split into
// statements at semicolons, and parsed by splitting each statement at its
// loosest-binding operator. The result is an immutable [*Block] that can be
// evaluated any number of times against different environments.
//
//	b, err := lang.Compile(ctx, "v.hp = math.max(v.hp ?? 0, 10); return v.hp * 2;")
//	if err != nil { ... }
//
//	env := lang.NewEnvironment()
//	out, err := env.Run(ctx, b) // Number(20)
//
// # Values
//
// Every value is a [Number] (32-bit float), a [Struct], a [*Function], an
// [*External], or [Null]. Zero is false and every other number is true.
// Structs are copied when read and when stored. Functions and externals are
// shared handles: host objects exposed through [Object] may be mutated by
// scripts, and every handle observes the change.
//
// # Grammar
//
// Informal EBNF:
//
//	Block     → Statement (';' Statement)* ';'?
//	Statement → Expr
//	Expr      → 'return' Expr
//	          | Access '=' Expr
//	          | Expr '?' Expr ':' Expr
//	          | Expr '??' Expr
//	          | Expr '==' Expr
//	          | Expr ('+' | '-' | '*' | '/') Expr
//	          | ('!' | '-') Expr
//	          | '(' Expr ')'
//	          | Number | Access | '{' Block '}'
//	Access    → Name ('.' Name | '[' Expr ']' | '(' Args? ')')*
//	Args      → Expr (',' Expr)* ','?
//
// Operators of equal precedence split at the leftmost occurrence, so
// "8 - 3 - 2" is 7. [WithLeftAssociative] selects conventional grouping.
//
// # Names
//
// The root of an access chain resolves through the alias table, then
// variables, then constants. Assignment only writes variables; missing
// struct keys along an assignment path are created as empty structs.
//
// # Errors
//
// Every error is an [*Error] carrying a kind and structured attributes, and
// matches its sentinel with [errors.Is]:
//
//	if errors.Is(err, lang.ErrVariableNotFound) {
//		name, _ := err.(*lang.Error).Attr("name")
//	}
package lang
