package main

import (
	"github.com/trigitdb/trigit/cmd/trigitd/cmd"
)

func main() {
	cmd.Execute()
}
