package main

import (
	"os"

	"github.com/sot015/ocp-quiz-app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
