// Package profile provides optional runtime profiling for the haksh
// interpreter.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o haksh .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking on synchronization primitives
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine stacks
//   - heap:      live heap allocations
//   - mem:       general memory profiling
//   - mutex:     mutex contention
//   - thread:    thread creation
//   - trace:     execution trace
//
// # Usage
//
//	stop := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}.Start()
//	defer stop.Stop()
//
// From the command line, profile a script while it runs:
//
//	haksh --pprof-mode cpu run script.hk
//	go tool pprof -http=: ~/.cache/haksh/pprof/cpu.pprof
//
// The pprof build also imports [net/http/pprof], registering its handlers on
// [net/http.DefaultServeMux] under /debug/pprof/.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
