// Command thermals prints the machine's hardware temperatures, color-coded,
// once or on a refresh interval.
package main

import "github.com/luki/thermals/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
