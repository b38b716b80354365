// Package cli implements the passbook command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/passbook"
	"github.com/meigma/passbook/cmd/passbook/cli/config"
)

// Build information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// envPrefix prefixes environment overrides, e.g. PASSBOOK_SIGN_CHAIN.
const envPrefix = "PASSBOOK"

// Global flags.
var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "passbook",
	Short: "Build and verify signed wallet passes",
	Long: `Passbook builds signed .pkpass bundles from a YAML pass definition and a
directory of images, and inspects or verifies existing bundles.

Signing credentials can be given as flags, as PASSBOOK_* environment
variables, or in the config file (see "passbook config path").`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/passbook/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug logging")
	rootCmd.Version = version

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Pass Commands:"})
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}
	return err
}

// initConfig wires the config file and environment into viper.
// Precedence: flags, then PASSBOOK_* variables, then the config file, then
// defaults. A missing config file is not an error.
func initConfig() error {
	def := config.Default()
	viper.SetDefault("digest", def.Digest)
	viper.SetDefault("compression", def.Compression)
	viper.SetDefault("progress", def.Progress)
	for _, key := range []string{"sign.cert", "sign.key", "sign.p12", "sign.chain", "sign.password"} {
		viper.SetDefault(key, "")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	path := cfgFile
	if path == "" {
		var err error
		if path, err = config.File(); err != nil {
			return err
		}
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		// An explicitly requested file must exist.
		if cfgFile != "" {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

// loadConfig returns the effective configuration.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the library logger: discarded unless --verbose is set.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		Prefix:          "passbook",
	})
	return slog.New(logger)
}

// newBuilder creates a pass builder from the effective configuration.
func newBuilder(cfg config.Config) (*passbook.Builder, error) {
	compression, err := passbook.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	return passbook.NewBuilder(
		passbook.WithLogger(newLogger()),
		passbook.WithDigestAlgorithm(cfg.Digest),
		passbook.WithCompression(compression),
	)
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// formatError converts passbook errors to user-friendly messages.
func formatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, passbook.ErrConfiguration):
		return fmt.Sprintf("Error: signing credentials incomplete: %v", err)
	case errors.Is(err, passbook.ErrSigning):
		return fmt.Sprintf("Error: could not sign (check certificate, key, password and chain): %v", err)
	case errors.Is(err, passbook.ErrEncoding):
		return fmt.Sprintf("Error: pass definition cannot be encoded: %v", err)
	case errors.Is(err, passbook.ErrReservedName), errors.Is(err, passbook.ErrInvalidName):
		return fmt.Sprintf("Error: bad asset name: %v", err)
	case errors.Is(err, passbook.ErrInvalidArchive):
		return fmt.Sprintf("Error: invalid or corrupt pass bundle: %v", err)
	case errors.Is(err, passbook.ErrReadLimits):
		return fmt.Sprintf("Error: pass bundle too large: %v", err)
	case errors.Is(err, passbook.ErrManifestMismatch):
		return fmt.Sprintf("Error: manifest does not match bundle contents: %v", err)
	case errors.Is(err, passbook.ErrSignatureInvalid):
		return fmt.Sprintf("Error: signature verification failed: %v", err)
	case errors.Is(err, passbook.ErrNotFound):
		return fmt.Sprintf("Error: not found: %v", err)
	case errors.Is(err, context.Canceled):
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
