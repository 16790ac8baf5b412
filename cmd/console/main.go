// Command taskify starts the interactive console todo app. Tasks live in
// memory for the lifetime of the session.
package main

import (
	"os"

	"taskify/internal/console"
	"taskify/internal/memstore"
)

func main() {
	d := console.NewDispatcher(memstore.New(), os.Stdout)
	d.Run(os.Stdin)
}
