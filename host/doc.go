// Package host performs the side effects of the haksh builtins on the local
// machine: the working directory, standard output, HTTP requests, and
// tailing of growing files.
//
// [New] returns a [*Host] that satisfies [lang.Host]:
//
//	in := lang.New(lang.WithHost(host.New(host.WithStdout(os.Stdout))))
//
// Files are tailed by polling with [github.com/radovskyb/watcher]. Lines
// appended after the watch begins are delivered in order; a truncated file is
// re-read from its start, and the watch ends once the file is removed or
// renamed.
package host
