// Command chaninspectord runs the channel inspector engine: an in-process
// control protocol and worker pool fronted by a PortAudio sample source.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chaninspectord: %v\n", err)
		os.Exit(1)
	}
}
