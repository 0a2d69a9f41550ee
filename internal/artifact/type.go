package artifact

import (
	"fmt"
	"strings"
)

// Type is the closed set of artifact categories.
type Type string

const (
	Error     Type = "error"
	Debug     Type = "debug"
	Info      Type = "info"
	Source    Type = "source"
	Operation Type = "operation"
)

// AllTypes lists every valid Type.
var AllTypes = []Type{Error, Debug, Info, Source, Operation}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType converts a string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown artifact type %q", s)
	}
	return t, nil
}
