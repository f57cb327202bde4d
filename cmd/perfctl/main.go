// Package main is the entry point for the perfctl CLI.
package main

import (
	"github.com/M3kko/nolimit-dashboard/internal/cli"
)

func main() {
	cli.Execute()
}
