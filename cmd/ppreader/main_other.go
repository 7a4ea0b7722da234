//go:build !wasip1

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "ppreader is a WASM module; build it with GOOS=wasip1 GOARCH=wasm")
	os.Exit(1)
}
