package main

import (
	"fmt"
	"os"

	"github.com/wippyai/jaot/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", errors.CategoryOf(err), err)
		os.Exit(1)
	}
}
