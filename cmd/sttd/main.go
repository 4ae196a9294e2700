package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Model load failures land here; the host treats a non-zero exit
		// before serving as "load failed".
		fmt.Fprintf(os.Stderr, "sttd: %v\n", err)
		os.Exit(1)
	}
}
