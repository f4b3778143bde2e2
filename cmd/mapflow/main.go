// Command mapflow inspects, evaluates and stores module graphs.
//
// Usage:
//
//	mapflow [--db path] [--log-level level] <command>
//
// Examples:
//
//	mapflow sockets
//	mapflow sockets --master --trigger-input Modulizer
//	mapflow demo --json > scene.json
//	mapflow inspect scene.json
//	mapflow eval scene.json --ticks 30 --tone 80
//	mapflow store import scene.json
//	mapflow store list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
