// Command emdsift decomposes a sampled signal into intrinsic mode functions.
//
// Usage:
//
//	emdsift run [flags]
//	emdsift config [flags]
//
// run reads whitespace-separated samples from a file or stdin and writes one
// CSV column per IMF to stdout. Logs go to stderr.
//
// Examples:
//
//	emdsift run --input signal.txt
//	emdsift run --type mask_sift --max-imfs 6 --workers 4 < signal.txt
//	emdsift run --type ensemble_sift --seed 42 --residual --input signal.txt
//	emdsift config --type complete_ensemble_sift > ceemdan.yaml
//	emdsift run --config ceemdan.yaml --input signal.txt
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "emdsift:", err)
		os.Exit(1)
	}
}
