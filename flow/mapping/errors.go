package mapping

import "errors"

// ErrUnknownName is returned when a target or mode name cannot be parsed.
var ErrUnknownName = errors.New("mapping: unknown name")
