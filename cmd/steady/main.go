// Package main is the single-binary entrypoint for Steady.
// One binary: the CLI, the API server, and the local SQLite store.
package main

import "github.com/steady-app/steady/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
