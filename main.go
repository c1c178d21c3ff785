// Package main is the entry point for nightscout-panel
package main

import "github.com/mrcode/nightscout-panel/internal/cli"

func main() {
	cli.Execute()
}
