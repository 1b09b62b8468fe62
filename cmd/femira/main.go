package main

import (
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp(os.Stdin).rootCmd().Execute(); err != nil {
		fatal(err)
	}
}
