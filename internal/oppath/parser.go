package oppath

import (
	"fmt"
	"strings"
)

// Parse creates a new Address by parsing its canonical string representation.
func Parse(raw string) (*Address, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("operation path cannot be empty")
	}

	addr := &Address{}
	for _, segment := range strings.Split(raw, Separator) {
		name := strings.TrimSpace(segment)
		if name == "" {
			return nil, fmt.Errorf("operation path %q contains empty segment", raw)
		}
		addr.Path = append(addr.Path, name)
	}
	return addr, nil
}

// ValidName reports whether name can be used as a path segment.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.Contains(name, Separator)
}
