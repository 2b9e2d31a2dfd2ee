// Package main provides the entry point for the airbase CLI tool.
package main

import "github.com/weconnect/airbase/cmd/airbase/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
