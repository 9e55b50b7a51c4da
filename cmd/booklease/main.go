package main

import "booklease/cmd/booklease/command"

func main() {
	command.Execute()
}
