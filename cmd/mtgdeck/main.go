package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{stdin: os.Stdin}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
