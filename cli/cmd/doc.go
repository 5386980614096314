// Package cmd implements the haksh subcommands: run, repl, parse, fmt, init,
// and version.
//
// Commands receive their shared interpreter configuration through a
// [Session] stored in the context by [WithSession], and the parsed command
// line through [WithContext].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file, without extension.
	ConfigIdentifier = "config"
)
