package main

import (
	"os"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
