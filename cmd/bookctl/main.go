package main

import (
	"os"

	"github.com/strokedoutsasquatch-creator/kreaite-sub005/cmd/bookctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
