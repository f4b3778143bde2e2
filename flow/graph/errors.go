package graph

import "errors"

var (
	// ErrPartNotFound is returned by the strict lookups for an unknown part id.
	ErrPartNotFound = errors.New("graph: part not found")
	// ErrInvalidConnection is returned by ValidateConnection.
	ErrInvalidConnection = errors.New("graph: invalid connection")
	// ErrCycle is returned by Order when the connections form a cycle.
	ErrCycle = errors.New("graph: contains cycle")
	// ErrUnknownKind is returned when a part kind is not registered.
	ErrUnknownKind = errors.New("graph: unknown part kind")
	// ErrUnknownName is returned when an enum name cannot be parsed.
	ErrUnknownName = errors.New("graph: unknown name")
)
