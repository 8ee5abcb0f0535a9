// Package main is the single-binary entrypoint for Nova.
package main

import "github.com/nova-wellness/nova/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
