package main

import "runepkg/internal/cli"

func main() {
	cli.Execute()
}
