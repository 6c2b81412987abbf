package main

import (
	"fmt"
	"os"

	"github.com/opsgate/opsgate/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "opsgate:", err)
		os.Exit(1)
	}
}
