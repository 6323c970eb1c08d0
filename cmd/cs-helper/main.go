package main

import (
	"github.com/mi-examples/cs-helper/internal/cli"
)

func main() {
	cli.Execute()
}
