package config

import (
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stanstork/stratum-spaces/internal/models"
)

type EmailConfig struct {
	From              string `mapstructure:"from"`
	SMTPHost          string `mapstructure:"smtp_host"`
	SMTPPort          int    `mapstructure:"smtp_port"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	InviteURLTemplate string `mapstructure:"invite_url_template"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
}

// InviteConfig tunes the invite workflow.
type InviteConfig struct {
	LookupDelay time.Duration `mapstructure:"lookup_delay"`
	// AllowUnprotected lets an invite be sealed with neither a recipient key nor a passphrase.
	AllowUnprotected bool             `mapstructure:"allow_unprotected"`
	KDF              models.KDFParams `mapstructure:"kdf"`
	Locale           string           `mapstructure:"locale"`
}

// APIConfig is used by clients talking to the API server.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Config struct {
	DatabaseURL string         `mapstructure:"database_url"`
	ServerPort  string         `mapstructure:"server_port"`
	JWTSecret   string         `mapstructure:"jwt_secret"`
	Email       EmailConfig    `mapstructure:"email"`
	Temporal    TemporalConfig `mapstructure:"temporal"`
	Invite      InviteConfig   `mapstructure:"invite"`
	API         APIConfig      `mapstructure:"api"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	config, err := Parse(v)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return config
}

// Parse unmarshals an already populated viper instance, applying environment overrides
// (STRATUM_DATABASE_URL, STRATUM_INVITE_ALLOW_UNPROTECTED, ...) and fallback defaults.
func Parse(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("stratum")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"database_url", "server_port", "jwt_secret",
		"api.base_url", "api.token", "invite.allow_unprotected",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}
	if config.Email.InviteURLTemplate == "" {
		config.Email.InviteURLTemplate = "https://app.stratum.dev/spaces/%s/invites/%s"
	}
	if config.Temporal.HostPort == "" {
		config.Temporal.HostPort = "localhost:7233"
	}
	if config.Temporal.Namespace == "" {
		config.Temporal.Namespace = "default"
	}
	if config.Invite.LookupDelay <= 0 {
		config.Invite.LookupDelay = 750 * time.Millisecond
	}
	if config.Invite.Locale == "" {
		config.Invite.Locale = "en-US"
	}
	if config.API.BaseURL == "" {
		config.API.BaseURL = "http://localhost:" + config.ServerPort
	}
	if config.API.Timeout <= 0 {
		config.API.Timeout = 15 * time.Second
	}

	return &config, nil
}

// RequireServer checks the settings only the API server needs.
func (c *Config) RequireServer() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt_secret must be set in the config file")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("database_url must be set in the config file")
	}
	return nil
}
