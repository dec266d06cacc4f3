package main

import "eventapi/commands"

func main() {
	commands.Execute()
}
