// Package cli contains the command line interface for haksh.
//
// # Usage
//
// Without a command, haksh runs the script named by its argument, or starts
// the REPL when there is none:
//
//	haksh script.hk
//	haksh < script.hk
//	haksh run -
//	haksh
//
// The remaining commands are:
//
//   - repl: start the interactive REPL (--plain reads lines from stdin)
//   - parse: print the syntax tree of a script as JSON or YAML
//   - fmt: print a script in canonical layout, or rewrite it with --write
//   - init: write the current flag values to the YAML configuration file
//   - version: print the version
//
// # Session Options
//
//   - --prelude, -I: evaluate a script before the command; its top-level
//     bindings are in scope. Repeatable, and "-" reads stdin.
//   - --define, -D: bind NAME to the value of an expr-lang expression.
//     Expressions may refer to earlier definitions. Results must be
//     booleans, strings, non-negative integers, nil, or maps of these.
//   - --max-depth: maximum nesting depth accepted by the parser
//   - --max-call-depth: maximum depth of nested function calls
//   - --http-timeout: timeout of requests made by http.get and http.post.json
//
// # Configuration Files
//
// Flags are also read from config.json and config.yaml in the user
// configuration directory (e.g., ~/.config/haksh). Nested YAML mappings join
// their keys with hyphens, so
//
//	log:
//	  level: debug
//	define:
//	  - greeting="hello"
//
// is equivalent to --log-level=debug --define 'greeting="hello"'. Flags given
// on the command line take precedence.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//   - --log-file: Append log records to a file instead of stderr
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o haksh .
//
// Options:
//   - --pprof-mode: Enable profiling (cpu, mem, block, mutex, ...)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/haksh/pprof)
//
// # Examples
//
//	# Debug logging while running a script
//	haksh --log-level=debug run script.hk
//
//	# REPL with a prelude and a predefined value
//	haksh -I lib.hk -D 'port=8000 + 80' repl
//
//	# Profile a script
//	haksh --pprof-mode=cpu --pprof-dir=/tmp/profiles run script.hk
package cli
