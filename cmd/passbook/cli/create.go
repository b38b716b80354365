package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/meigma/passbook"
	"github.com/meigma/passbook/cmd/passbook/cli/config"
)

var (
	createOutput string
	createAssets string
	createSerial string
)

var createCmd = &cobra.Command{
	Use:     "create <pass.yaml>",
	Short:   "Build a signed pass bundle",
	GroupID: "core",
	Long: `Create builds a signed .pkpass bundle from a YAML pass definition.

The definition names the pass style, identity, fields, barcode and
locations. Images are taken from the directory named by --assets or by
the definition's "assets" key.

Examples:
  passbook create pass.yaml -o coupon.pkpass --cert cert.pem --key key.pem --chain wwdr.pem
  passbook create pass.yaml -o coupon.pkpass --p12 identity.p12 --chain wwdr.pem
  PASSBOOK_SIGN_PASSWORD=secret passbook create pass.yaml -o - > coupon.pkpass`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	},
}

func init() {
	f := createCmd.Flags()
	f.StringVarP(&createOutput, "output", "o", "", `Output bundle path ("-" for stdout)`)
	f.StringVar(&createAssets, "assets", "", "Directory of pass images")
	f.StringVar(&createSerial, "serial", "", "Override the pass serial number")
	f.String("cert", "", "Signing certificate PEM file")
	f.String("key", "", "Signing private key PEM file")
	f.String("p12", "", "PKCS#12 bundle holding certificate and key")
	f.String("chain", "", "Trust chain (WWDR) certificate PEM file")
	f.String("password", "", "Private key or PKCS#12 password (prefer PASSBOOK_SIGN_PASSWORD)")
	f.String("digest", "", "Manifest digest algorithm: sha1, sha256 or sha512 (default sha1)")
	f.String("compression", "", "Member compression: deflate, best or store (default deflate)")
	f.String("progress", "", "Progress display: auto, tty or plain (default auto)")

	for key, flag := range map[string]string{
		"sign.cert":     "cert",
		"sign.key":      "key",
		"sign.p12":      "p12",
		"sign.chain":    "chain",
		"sign.password": "password",
		"digest":        "digest",
		"compression":   "compression",
		"progress":      "progress",
	} {
		//nolint:errcheck // flags are defined above
		viper.BindPFlag(key, f.Lookup(flag))
	}

	if err := createCmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(createCmd)
}

func runCreate(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	toStdout := createOutput == "-"
	if toStdout && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write a binary bundle to a terminal; redirect stdout or use -o FILE")
	}

	p, err := loadPassFile(args[0])
	if err != nil {
		return err
	}
	if createAssets != "" {
		if err := p.AddFS(os.DirFS(createAssets)); err != nil {
			return fmt.Errorf("add assets from %s: %w", createAssets, err)
		}
	}
	if createSerial != "" {
		p.SerialNumber = createSerial
	}

	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if toStdout {
		_, err := builder.Create(ctx, p, credentials(cfg.Sign), passbook.WithOutput(os.Stdout))
		return err
	}

	// Credentials are checked before the output file is touched.
	if _, err := credentials(cfg.Sign).Validate(); err != nil {
		return err
	}

	out, err := os.Create(createOutput)
	if err != nil {
		return err
	}

	callback, finish := newCreateProgress()
	bundle, err := builder.Create(ctx, p, credentials(cfg.Sign),
		passbook.WithOutput(out),
		passbook.WithProgress(callback),
	)
	finish()
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(createOutput)
		return err
	}

	//nolint:gosec // G115: bundle sizes are non-negative
	fmt.Printf("Created %s (%d members, %s, %s)\n",
		createOutput, len(bundle.Manifest)+2, humanize.IBytes(uint64(bundle.Size)), bundle.Digest)
	return nil
}

// credentials maps the sign config section to library credentials.
func credentials(sc config.SignConfig) passbook.Credentials {
	return passbook.Credentials{
		CertificateFile: sc.Cert,
		KeyFile:         sc.Key,
		PKCS12File:      sc.P12,
		ChainFile:       sc.Chain,
		Password:        passwordFunc(sc.Password),
	}
}

// passwordFunc returns the configured password, or prompts on the terminal
// when none is configured. Without a terminal the key is assumed to be
// unencrypted.
func passwordFunc(configured string) passbook.PasswordFunc {
	if configured != "" {
		return passbook.StaticPassword(configured)
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() ([]byte, error) {
		fmt.Fprint(os.Stderr, "Key password: ")
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return pw, err
	}
}
