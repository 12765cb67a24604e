package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff      Level = iota // no tracing
	LevelError                 // failures only
	LevelSession               // session and file boundaries
	LevelResource              // owned resource lifetimes
	LevelDebug                 // every catalog call
)

var levelNames = [...]string{"off", "error", "session", "resource", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag or config value to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|session|resource|debug)", s)
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelSession:
		return scope <= ScopeFile
	case LevelResource:
		return scope <= ScopeResource
	case LevelDebug:
		return true
	default:
		return false
	}
}
