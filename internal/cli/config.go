package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crypticarchive/archive/pkg/archive"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// ConfigVersion is the configuration file format written by this CLI.
const ConfigVersion = "0.1.0"

// supportedConfigVersions lists the file formats this CLI can read.
var supportedConfigVersions = mustConstraint("~0.1")

var ErrUnsupportedConfigVersion = errors.New("unsupported config file version")

// Config represents the configuration for the archive CLI
// It contains server connection details and the current session
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// Scheme is http or https
	Scheme string `yaml:"scheme"`
	// Host is the archive host, optionally with a port
	Host string `yaml:"host"`
	// SessionID is the session established by the last login
	SessionID string `yaml:"session_id,omitempty"`
	// Handle is the user the session belongs to
	Handle string `yaml:"handle,omitempty"`
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/crypticarchive on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "crypticarchive", DefaultConfigFile), nil
}

// newDefaultConfig returns the configuration used before one is written,
// taken from the environment.
func newDefaultConfig() *Config {
	env := archive.ConfigFromEnv()
	return &Config{
		Version: ConfigVersion,
		Scheme:  env.Scheme,
		Host:    env.Host,
	}
}

// LoadConfig loads the configuration from file. A missing file yields the
// default configuration.
func LoadConfig(file string) (*Config, error) {
	yamlStr, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return newDefaultConfig(), nil
		}
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	c := newDefaultConfig()
	if err = yaml.Unmarshal(yamlStr, c); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	if err := c.checkVersion(); err != nil {
		return nil, err
	}
	return c, nil
}

func (cfg *Config) checkVersion() error {
	v, err := semver.NewVersion(cfg.Version)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedConfigVersion, cfg.Version)
	}
	if !supportedConfigVersions.Check(v) {
		return fmt.Errorf("%w: %s", ErrUnsupportedConfigVersion, v)
	}
	return nil
}

// WriteConfig writes the configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ArchiveConfig returns the library configuration for the server.
func (cfg *Config) ArchiveConfig() archive.Config {
	return archive.Config{
		Scheme: cfg.Scheme,
		Host:   cfg.Host,
	}
}

// newConfigCmd creates the config command and its show subcommand
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage CLI configuration settings like the server location.
Changing the server clears the stored session.

Example:
  archive config --scheme http --host localhost:3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, _ := cmd.Flags().GetString("scheme")
			host, _ := cmd.Flags().GetString("host")
			if scheme == "" && host == "" {
				return cmd.Help()
			}
			return setServerConfig(cmd, scheme, host)
		},
	}
	cmd.Flags().String("scheme", "", "Set the server scheme (http or https)")
	cmd.Flags().String("host", "", "Set the server host, optionally with a port (e.g., localhost:3000)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]any{
					"version":     cfg.Version,
					"server":      cfg.ArchiveConfig().BaseURL(),
					"connected":   cfg.SessionID != "",
					"handle":      cfg.Handle,
					"config_file": configFile,
				})
				return nil
			}
			cfg.Print(cmd)
			return nil
		},
	})
	return cmd
}

// Print prints the configuration in a human-readable format
func (cfg *Config) Print(cmd *cobra.Command) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Server: %s\n", cfg.ArchiveConfig().BaseURL())
	if cfg.SessionID != "" {
		fmt.Fprintf(w, "Session: %s (%s)\n", cfg.SessionID, cfg.Handle)
	} else {
		fmt.Fprintln(w, "Session: none")
	}
	fmt.Fprintf(w, "Config file: %s\n", configFile)
}

// setServerConfig updates the server location and clears the session
func setServerConfig(cmd *cobra.Command, scheme, host string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if scheme != "" {
		cfg.Scheme = scheme
	}
	if host != "" {
		cfg.Host = host
	}
	if err := cfg.ArchiveConfig().Validate(); err != nil {
		return err
	}
	cfg.Version = ConfigVersion
	cfg.SessionID = ""
	cfg.Handle = ""

	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	server := cfg.ArchiveConfig().BaseURL()
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), map[string]string{
			"server":      server,
			"config_file": configFile,
		})
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Server configured: %s\n", server)
		fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configFile)
	}
	return nil
}
