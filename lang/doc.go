// Package lang implements the haksh scripting language: a hand-written
// parser, an immutable syntax tree, and a tree-walking interpreter over a
// persistent environment of closures and values.
//
// # Grammar
//
// Informal EBNF:
//
//	Block       → Element ((';' | newline) Element)*
//	Element     → 'let' Name '=' Expr
//	            | 'using' Name '=' Application
//	            | 'fn' Name? '(' Params ')' '{' Block '}'
//	            | Expr
//	Expr        → 'if' Expr 'then' '{' Block '}' 'else' '{' Block '}'
//	            | AddSub (CompareOp AddSub)?
//	AddSub      → MulDiv (('+' | '-') MulDiv)*
//	MulDiv      → Operand (('*' | '/') Operand)*
//	Operand     → Application | Primary
//	Application → Name ('.' Name)* (('--' Name Primary) | Primary)*
//	Primary     → Bool | Integer | String | 'r' String | Name
//	            | '{' Block '}' | '(' (Name '=' Expr (',' Name '=' Expr)*)? ')'
//
// Comments start with '#' and run to the end of the line.
//
// # Example
//
//	let greeting = "hello"
//	fn countdown(n) {
//	  if n == 0 then { println "liftoff" } else {
//	    println n
//	    let next = n - 1
//	    countdown next
//	  }
//	}
//	countdown 3
//
//	using line = fs.watch "app.log"
//	if line.includes r"ERROR" then { println line } else {}
//
// # Using
//
// A using element passes the rest of its block to a function application as
// a one-parameter closure. The example above is equivalent to
//
//	fs.watch "app.log" { fn(line) { if line.includes r"ERROR" then ... } }
//
// # Builtins
//
// Applications are resolved first against a closed table of builtins (see
// [Builtins]), whose side effects are performed by a [Host].
//
// # Errors
//
// Every error returned by this package matches one of the Err sentinels
// with [errors.Is]. Parse failures are reported as [*ParseError].
package lang
