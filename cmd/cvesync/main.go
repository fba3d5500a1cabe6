// cmd/cvesync/main.go
package main

import (
	"fmt"
	"os"

	"github.com/opencve/cvesync/cmd/cvesync/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
