// Command brandlens indexes reference brand images by perceptual fingerprint
// and finds visually similar ones.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/brandlens/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(bootstrap); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
