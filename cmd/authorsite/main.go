package main

import "github.com/emiliopalmerini/authorsite/internal/cli"

func main() {
	cli.Execute()
}
