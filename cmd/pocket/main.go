package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fatal("Error", err)
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
