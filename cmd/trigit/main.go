package main

import (
	"github.com/trigitdb/trigit/cmd/trigit/cmd"
)

func main() {
	cmd.Execute()
}
