package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/meigma/passbook/cmd/passbook/cli/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage passbook configuration",
	Long: `View and modify passbook configuration.

Without arguments, displays the current effective configuration.
Use subcommands to view the config path, initialize a config file,
or set configuration values.`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configPath returns the file the config commands read and write.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.File()
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long: `Create a default configuration file at the XDG config path.

The file will be created at ~/.config/passbook/config.yaml (or
$XDG_CONFIG_HOME/passbook/config.yaml if set).`,
	RunE: runConfigInit,
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o750); mkdirErr != nil {
		return mkdirErr
	}

	// The password is left out; set it via PASSBOOK_SIGN_PASSWORD.
	data, err := yaml.Marshal(config.Default().Map())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
		return writeErr
	}

	fmt.Printf("Created config file: %s\n", path)
	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Examples:
  passbook config set sign.chain ~/certs/wwdr.pem
  passbook config set digest sha256`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		key, value := strings.ToLower(args[0]), args[1]
		if !knownKey(key) {
			return fmt.Errorf("unknown config key %q", key)
		}

		path, err := configPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}

		// A file-only instance keeps flag and environment values out of the file.
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		v.Set(key, value)
		if err := v.WriteConfigAs(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Printf("Updated %s = %v\n", key, displayValue(key, value))
		return nil
	},
}

// knownKey reports whether key is a setting passbook reads.
func knownKey(key string) bool {
	switch key {
	case "sign.cert", "sign.key", "sign.p12", "sign.chain", "sign.password",
		"digest", "compression", "progress":
		return true
	default:
		return false
	}
}

// displayValue masks secrets before printing.
func displayValue(key string, value any) any {
	if key == "sign.password" && value != "" {
		return "********"
	}
	return value
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	settings := viper.AllSettings()
	if sign, ok := settings["sign"].(map[string]any); ok {
		if pw, ok := sign["password"]; ok {
			sign["password"] = displayValue("sign.password", pw)
		}
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
