// Package eval runs a module graph once per tick: it computes trigger
// outputs from a Snapshot, carries them along the connections, applies
// master/slave links and resolves every mapped input socket into a target
// parameter value.
package eval
