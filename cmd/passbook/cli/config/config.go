package config

// Config represents the passbook CLI configuration.
// Use mapstructure tags for Viper unmarshaling.
type Config struct {
	Sign        SignConfig `mapstructure:"sign"`
	Digest      string     `mapstructure:"digest"`
	Compression string     `mapstructure:"compression"`
	Progress    string     `mapstructure:"progress"`
}

// SignConfig holds the signing identity and trust chain locations.
// Password is usually supplied through PASSBOOK_SIGN_PASSWORD rather than
// written to disk.
type SignConfig struct {
	Cert     string `mapstructure:"cert"`
	Key      string `mapstructure:"key"`
	P12      string `mapstructure:"p12"`
	Chain    string `mapstructure:"chain"`
	Password string `mapstructure:"password"`
}

// Default returns the settings written by "passbook config init".
func Default() Config {
	return Config{
		Digest:      "sha1",
		Compression: "deflate",
		Progress:    "auto",
	}
}

// Map returns c as nested maps keyed like the config file, omitting the
// password and empty credential paths.
func (c Config) Map() map[string]any {
	sign := map[string]any{}
	for k, v := range map[string]string{
		"cert":  c.Sign.Cert,
		"key":   c.Sign.Key,
		"p12":   c.Sign.P12,
		"chain": c.Sign.Chain,
	} {
		if v != "" {
			sign[k] = v
		}
	}
	return map[string]any{
		"sign":        sign,
		"digest":      c.Digest,
		"compression": c.Compression,
		"progress":    c.Progress,
	}
}
