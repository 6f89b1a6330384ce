package main

import "github.com/nikbrunner/burst/cmd/burst/cmd"

func main() {
	cmd.Execute()
}
