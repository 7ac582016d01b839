package main

import (
	"fmt"
	"os"

	"github.com/danmuck/hostctl/cmd/hostctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hostctl: %v\n", err)
		os.Exit(1)
	}
}
