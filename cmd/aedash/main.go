package main

import "aedash/internal/cli"

func main() {
	cli.Execute()
}
