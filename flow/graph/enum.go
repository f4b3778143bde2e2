package graph

import (
	"fmt"
	"strings"
)

// enumNames maps the values of a small int enum to their text names.
type enumNames []string

func (n enumNames) format(v int, typ string) string {
	if v < 0 || v >= len(n) {
		return fmt.Sprintf("%s(%d)", typ, v)
	}

	return n[v]
}

func (n enumNames) marshal(v int, typ string) ([]byte, error) {
	if v < 0 || v >= len(n) {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownName, typ, v)
	}

	return []byte(n[v]), nil
}

func (n enumNames) parse(s, typ string) (int, error) {
	s = strings.TrimSpace(s)
	for i, name := range n {
		if strings.EqualFold(s, name) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s %q", ErrUnknownName, typ, s)
}
