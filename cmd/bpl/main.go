package main

import "github.com/panyam/bpl/cmd/bpl/commands"

func main() {
	commands.Execute()
}
