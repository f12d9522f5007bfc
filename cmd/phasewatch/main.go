package main

import "github.com/phasewatch/phasewatch/internal/cli"

func main() {
	cli.Execute()
}
