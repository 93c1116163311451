package main

import "github.com/ms0ur/timeflow/internal/cli"

func main() {
	cli.Execute()
}
