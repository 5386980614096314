package log

import (
	"log/slog"
	"strconv"
	"strings"
)

// String returns the lowercase name of the level. Levels between the named
// ones are rendered relative to the nearest lower named level, e.g. "info+2".
func (l Level) String() string {
	name := func(base Level, s string) string {
		if l == base {
			return s
		}

		return s + "+" + strconv.Itoa(int(l-base))
	}

	switch {
	case l < LevelTrace:
		return "trace" + strconv.Itoa(int(l-LevelTrace))
	case l < LevelDebug:
		return name(LevelTrace, "trace")
	case l < LevelInfo:
		return name(LevelDebug, "debug")
	case l < LevelWarn:
		return name(LevelInfo, "info")
	case l < LevelError:
		return name(LevelWarn, "warn")
	default:
		return name(LevelError, "error")
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) {
	return []byte(strings.ToUpper(l.String())), nil
}

// Level implements [slog.Leveler].
func (l Level) Level() slog.Level { return slog.Level(l) }
