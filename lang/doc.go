// Package lang turns Dyn source text into a syntax tree.
//
// Dyn is a small, dynamically-typed, expression-oriented language. This
// package covers its syntax only: a [Lexer] producing tokens on demand, a
// precedence-climbing parser producing a [Program], structured [Diagnostic]
// errors, a canonical printer and tree utilities. It does not resolve
// names, check types or evaluate anything.
//
// # Grammar
//
// Informal EBNF:
//
//	Program  → Expr* EOF
//	Expr     → Unary (BinOp Unary)*
//	Unary    → '-' Unary | Primary
//	Primary  → identifier | number | string
//	         | '[' Expr* ']'
//	         | Block
//	         | '(' Expr ')'
//	         | 'let' '!'? identifier '=' Expr
//	         | 'if' Expr Block ('else' Block)?
//	         | 'iter' Expr 'of' identifier Block
//	         | ('|' identifier* '|' | '||')? '->' Expr
//	Block    → '{' Expr* '}'
//	BinOp    → '*' | '/' | '%'                      (5)
//	         | '+' | '-'                            (4)
//	         | '==' | '!=' | '<' | '<=' | '>' | '>=' (3)
//	         | '&&'                                 (2)
//	         | '||'                                 (1)
//
// Higher levels bind tighter; unary minus binds tighter than any binary
// operator. All binary operators are left-associative.
//
// Identifiers are runs of lowercase ASCII letters and numbers are runs of
// decimal digits; a letter run touching a digit run is an error. Strings are
// delimited by double quotes and have no escapes. Expressions in a sequence
// are separated by whitespace only; there are no commas or semicolons.
// Comments run from "//" to end of line or between "/*" and "*/". Block
// comments nest.
//
// The single token "||" at the start of an expression is an empty parameter
// list; elsewhere it is logical or.
//
// A block's value is the value of its last expression, or unit when empty.
// The "!" after "let" marks a binding mutable and has no other meaning here.
//
// # Example
//
//	let double = |x| -> x * 2
//	let! total = 0
//	iter [1 2 3] of n {
//	  let total = total + n * 2
//	}
//	if total > 10 { "big" } else { "small" }
//
// # Limits
//
// Parser recursion depth equals the nesting depth of the source. Nesting
// beyond [DefaultMaxDepth] (see [WithMaxDepth]) fails with
// [MaxDepthExceeded] instead of exhausting the stack.
package lang
