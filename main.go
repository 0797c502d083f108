package main

import (
	"github.com/shopique/storefront/cmd"
)

func main() {
	cmd.Start()
}
