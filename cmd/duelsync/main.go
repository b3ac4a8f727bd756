package main

import (
	"github.com/duelhq/duelsync/internal/cli"
)

func main() {
	cli.Execute()
}
