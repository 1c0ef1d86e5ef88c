package main

import (
	"os"

	"github.com/supportdesk/support-system/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
