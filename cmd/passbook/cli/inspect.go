package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/passbook"
)

var (
	inspectLong  bool
	inspectHuman bool
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <bundle>",
	Aliases: []string{"ls"},
	Short:   "List the members of a pass bundle",
	GroupID: "core",
	Long: `Inspect lists the members of a .pkpass bundle in archive order.

The long format adds each member's size, its manifest digest, and whether
it was generated by the signing pipeline or supplied as an asset.

Examples:
  passbook inspect coupon.pkpass
  passbook ls -l coupon.pkpass
  passbook ls -lH coupon.pkpass`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectLong, "long", "l", false, "Use long listing format")
	inspectCmd.Flags().BoolVarP(&inspectHuman, "human-readable", "H", false, "Print sizes in human-readable format")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	a, err := passbook.OpenArchiveFile(args[0], passbook.DefaultReadLimits)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.List()
	if err != nil {
		return err
	}

	if !inspectLong {
		printShortListing(os.Stdout, entries)
		return nil
	}

	// A bundle without a readable manifest still lists; digests show as "-".
	var m passbook.Manifest
	if data, err := a.ReadFile(passbook.ManifestMember); err == nil {
		_ = json.Unmarshal(data, &m)
	}
	printLongListing(os.Stdout, entries, m)
	return nil
}

// printShortListing prints just the member names.
func printShortListing(w io.Writer, entries []passbook.Entry) {
	for _, entry := range entries {
		fmt.Fprintln(w, entry.Name)
	}
}

// printLongListing prints kind, size, digest and name for every member.
func printLongListing(w io.Writer, entries []passbook.Entry, m passbook.Manifest) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			entryKind(entry),
			formatSize(entry.Size),
			shortDigest(m[entry.Name]),
			entry.Name)
	}
	tw.Flush()
}

func entryKind(entry passbook.Entry) string {
	if entry.Generated() {
		return "meta"
	}
	return "asset"
}

// shortDigest abbreviates a hex digest to 12 characters.
func shortDigest(hex string) string {
	switch {
	case hex == "":
		return "-"
	case len(hex) > 12:
		return hex[:12]
	default:
		return hex
	}
}

// formatSize formats a member size for display.
func formatSize(size int64) string {
	if inspectHuman {
		//nolint:gosec // G115: size is from checked archive metadata
		return humanize.IBytes(uint64(size))
	}
	return strconv.FormatInt(size, 10)
}
