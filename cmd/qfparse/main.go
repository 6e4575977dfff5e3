package main

import "qfparse/internal/cli"

func main() {
	cli.Execute()
}
