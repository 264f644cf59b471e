package main

import "github.com/bobee/supportbot/internal/commands"

func main() {
	commands.Execute()
}
