package main

import cmd "github.com/rohmanhakim/robotx/internal/cli"

func main() {
	cmd.Execute()
}
