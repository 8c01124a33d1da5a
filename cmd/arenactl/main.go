package main

import (
	"github.com/tankarena/lobby-server/internal/cli"
)

func main() {
	cli.Execute()
}
