package main

import "toolshelf/internal/cli"

func main() {
	cli.Execute()
}
