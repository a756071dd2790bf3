package main

import (
	"github.com/Rakhulsr/storefront/app/cmd"
)

func main() {
	cmd.RunCli()
}
