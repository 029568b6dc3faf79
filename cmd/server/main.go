package main

import (
	"fmt"
	"os"

	"rayenna-crm/cmd/server/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
