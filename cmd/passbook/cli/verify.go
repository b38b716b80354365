package cli

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/passbook"
)

var verifyRoots string

var verifyCmd = &cobra.Command{
	Use:     "verify <bundle>",
	Short:   "Verify the manifest and signature of a pass bundle",
	GroupID: "core",
	Long: `Verify checks that every member of a .pkpass bundle matches its manifest
digest, that the manifest lists exactly those members, and that the detached
signature over the manifest is valid.

With --roots the signing certificate must also chain to one of the given
root certificates.

Examples:
  passbook verify coupon.pkpass
  passbook verify --roots wwdr-root.pem coupon.pkpass`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyRoots, "roots", "", "PEM file of trusted root certificates")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}

	a, err := passbook.OpenArchiveFile(args[0], passbook.DefaultReadLimits)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []passbook.VerifyOption
	if verifyRoots != "" {
		pool, err := loadRoots(verifyRoots)
		if err != nil {
			return err
		}
		opts = append(opts, passbook.WithRoots(pool))
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := builder.VerifyArchive(ctx, a, opts...)
	if err != nil {
		return err
	}

	var id struct {
		PassTypeIdentifier string `json:"passTypeIdentifier"`
		SerialNumber       string `json:"serialNumber"`
	}
	_ = json.Unmarshal(result.PassJSON, &id)

	fmt.Printf("Verified %s\n", args[0])
	fmt.Printf("  pass:     %s %s\n", id.PassTypeIdentifier, id.SerialNumber)
	fmt.Printf("  members:  %d\n", len(result.Entries))
	fmt.Printf("  manifest: %s\n", result.Algorithm)
	return nil
}

// loadRoots reads a PEM bundle into a certificate pool.
func loadRoots(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
