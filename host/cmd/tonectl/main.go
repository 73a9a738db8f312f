// Command tonectl plays tones on a Calliope mini running the tone
// firmware, or on the built-in simulator.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
