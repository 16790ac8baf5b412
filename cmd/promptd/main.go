// Command promptd serves markdown command files as prompts over a
// JSON-RPC 2.0 stdio loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"taskify/internal/mcp"
)

func main() {
	commandsDir := flag.String("commands", ".claude/commands", "directory of *.md command files")
	name := flag.String("name", "taskify-promptd", "server name reported on initialize")
	flag.Parse()

	commands, err := mcp.LoadCommands(*commandsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "promptd: %v\n", err)
		os.Exit(1)
	}
	if len(commands) == 0 {
		fmt.Fprintf(os.Stderr, "promptd: no command files found in %s\n", *commandsDir)
	}

	server := mcp.NewServer(*name, commands)
	if err := server.Serve(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "promptd: %v\n", err)
		os.Exit(1)
	}
}
