package main

import (
	"github.com/gtnewhorizons/recipemap/pkg/cli"
)

func main() {
	cli.Execute()
}
