package main

import "reqforge/internal/cli"

func main() {
	cli.Execute()
}
