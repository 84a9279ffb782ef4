package config

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a configuration failure.
type Kind int

const (
	KindIO Kind = iota + 1
	KindParse
	KindSchemaViolation
	KindMissingField
	KindUnknownVariant
)

// Sentinels for errors.Is. Every non-I/O failure also matches ErrParse.
var (
	ErrIO              = errors.New("config i/o error")
	ErrParse           = errors.New("config parse error")
	ErrSchemaViolation = errors.New("config schema violation")
	ErrMissingField    = errors.New("config missing field")
	ErrUnknownVariant  = errors.New("config unknown variant")
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "i/o error"
	case KindParse:
		return "syntax error"
	case KindSchemaViolation:
		return "schema violation"
	case KindMissingField:
		return "missing field"
	case KindUnknownVariant:
		return "unknown variant"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindParse:
		return ErrParse
	case KindSchemaViolation:
		return ErrSchemaViolation
	case KindMissingField:
		return ErrMissingField
	case KindUnknownVariant:
		return ErrUnknownVariant
	}
	return nil
}

// Error describes one configuration failure.
type Error struct {
	Kind Kind

	// File is the config file path, empty when parsing from memory.
	File string

	// Field is the dotted key path, e.g. "log.location.type".
	Field string

	// Line is the 1-based source line, 0 when unknown.
	Line int

	Msg string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config ")
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the Kind sentinel. Schema-level kinds are parse failures too.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if target == e.Kind.sentinel() {
		return true
	}
	return target == ErrParse && e.Kind != KindIO
}

// KindOf returns the Kind of the first *Error in err's tree, or 0.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
