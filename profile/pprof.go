//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes in sorted order.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// option appends the pkg/profile settings for one field of a Profiler.
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func start(p Profiler) Stopper {
	fn, ok := mode[p.Mode]
	if !ok {
		return ignore{}
	}

	settings := []func(*profile.Profile){fn}

	for _, opt := range []option{withPath(p.Path), withQuiet(p.Quiet)} {
		settings = opt(settings)
	}

	return profile.Start(settings...)
}

func withPath(path string) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if path != "" {
			s = append(s, profile.ProfilePath(path))
		}

		return s
	}
}

func withQuiet(quiet bool) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if quiet {
			s = append(s, profile.Quiet)
		}

		return s
	}
}
