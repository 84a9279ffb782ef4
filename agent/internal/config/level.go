package config

import (
	"fmt"
	"strings"
)

// Level is the minimum severity the agent logs.
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// DefaultLevel applies when log.level is absent.
const DefaultLevel = LevelInfo

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel matches s case-insensitively against debug, info, warn and error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return 0, &Error{
		Kind: KindUnknownVariant,
		Msg:  fmt.Sprintf("unknown log level %q (want debug, info, warn or error)", s),
	}
}
