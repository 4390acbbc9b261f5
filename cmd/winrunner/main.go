package main

import "github.com/winauto-dev/winrunner/pkg/cli"

func main() {
	cli.Execute()
}
