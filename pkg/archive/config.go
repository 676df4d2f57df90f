package archive

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultScheme  = "https"
	DefaultHost    = "www.crypticarchive.com"
	DefaultTimeout = 60 * time.Second

	// EnvScheme and EnvHost name the environment variables overriding the defaults.
	EnvScheme = "CA_SCHEME"
	EnvHost   = "CA_HOST"
)

// Config locates the archive server. Empty fields fall back to the environment
// and then to the defaults.
type Config struct {
	Scheme   string        `validate:"required,oneof=http https"`
	Host     string        `validate:"required,hostname_port|hostname_rfc1123"`
	Timeout  time.Duration // zero means DefaultTimeout, negative disables it
	Insecure bool          // skip TLS certificate validation
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ConfigFromEnv returns the configuration described by CA_SCHEME and CA_HOST.
func ConfigFromEnv() Config {
	return Config{}.resolve()
}

// LoadEnvFile loads dotenv files into the process environment. Variables
// already set are not overridden. With no argument it loads ".env".
func LoadEnvFile(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

func (c Config) resolve() Config {
	if c.Scheme == "" {
		c.Scheme = envOr(EnvScheme, DefaultScheme)
	}
	if c.Host == "" {
		c.Host = envOr(EnvHost, DefaultHost)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	if err := configValidator.Struct(c.resolve()); err != nil {
		return ErrInvalidConfig.MsgErr("invalid configuration: "+err.Error(), err)
	}
	return nil
}

// BaseURL returns scheme://host.
func (c Config) BaseURL() string {
	r := c.resolve()
	return r.Scheme + "://" + r.Host
}

// GetServerURL implements httpclient.Configurator.
func (c Config) GetServerURL() string {
	return c.BaseURL()
}

// GetTimeout implements httpclient.Configurator.
func (c Config) GetTimeout() time.Duration {
	t := c.resolve().Timeout
	if t < 0 {
		return 0
	}
	return t
}

// InsecureSkipVerify implements httpclient.Configurator.
func (c Config) InsecureSkipVerify() bool {
	return c.Insecure
}
