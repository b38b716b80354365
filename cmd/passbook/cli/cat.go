package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/passbook"
)

var catCmd = &cobra.Command{
	Use:   "cat <bundle> <member>",
	Short: "Output a member of a pass bundle",
	Long: `Cat writes the contents of a single bundle member to stdout.

Examples:
  passbook cat coupon.pkpass pass.json
  passbook cat coupon.pkpass icon.png > icon.png`,
	Args:              cobra.ExactArgs(2),
	RunE:              runCat,
	ValidArgsFunction: completeBundleMembers,
}

func init() {
	rootCmd.AddCommand(catCmd)
}

func runCat(_ *cobra.Command, args []string) error {
	a, err := passbook.OpenArchiveFile(args[0], passbook.DefaultReadLimits)
	if err != nil {
		return err
	}
	defer a.Close()

	rc, err := a.Open(args[1])
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(os.Stdout, rc)
	return err
}
