// Command passbook builds, inspects and verifies signed wallet pass bundles.
package main

import (
	"os"

	"github.com/meigma/passbook/cmd/passbook/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
