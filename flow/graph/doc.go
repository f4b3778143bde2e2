// Package graph holds the module graph: parts, their derived sockets, the
// connections between them and the operations that keep the two in step.
//
// A part's sockets are computed from its configuration by ResolveSockets.
// They are not recomputed automatically: after changing a part's Type or
// Link, call Module.UpdatePartSockets, which stores the new sockets and
// deletes connections whose indices fell out of range.
//
// Connections are added without validation. Module.ValidateConnection is
// available to callers that want range and type checks.
package graph
