package main

import (
	"fmt"
	"os"
	"strings"

	"yatube/service"
)

// CliVersion is reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to a subcommand and exits with its code.
func RealMain() {
	if len(os.Args) < 2 {
		service.HandleCommand(nil)
		exit(1)
		return
	}

	switch strings.ToLower(os.Args[1]) {
	case "version":
		fmt.Printf("yatube version %s\n", CliVersion)
		exit(0)
	default:
		exit(service.HandleCommand(os.Args[1:]))
	}
}
