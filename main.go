//go:build !js

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "pcdviewer runs in a browser: build with GOOS=js GOARCH=wasm, or use cmd/pcdinfo")
	os.Exit(1)
}
