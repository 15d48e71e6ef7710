// Command petstats normalizes pet stats and renders stat bars.
package main

import "github.com/mesh-intelligence/petstats/internal/cli"

func main() {
	cli.Execute()
}
