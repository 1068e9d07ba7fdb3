// Command sqljudge evaluates generated SQL answers against reference
// answers and selects consensus candidates.
package main

import (
	"os"

	"github.com/leapstack-labs/sqljudge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
