package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host       string           `yaml:"host"`
	BasePath   string           `yaml:"basePath"`
	DocsPath   string           `yaml:"docsPath"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Revocation RevocationConfig `yaml:"revocation"`
	Events     EventsConfig     `yaml:"events"`
	AWS        AWSConfig        `yaml:"aws"`
	Server     ServerConfig     `yaml:"server"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// AuthConfig defines token signing and the user mutation policy
type AuthConfig struct {
	SigningKey         string        `yaml:"signingKey"`
	SigningKeySecretID string        `yaml:"signingKeySecretId"`
	AccessTokenTTL     time.Duration `yaml:"accessTokenTTL"`
	RefreshTokenTTL    time.Duration `yaml:"refreshTokenTTL"`
	UserMutationPolicy string        `yaml:"userMutationPolicy"`
}

// RevocationConfig selects where logged out refresh tokens are recorded
type RevocationConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EventsConfig defines the audit event topic. An empty URL disables publishing.
type EventsConfig struct {
	PulsarURL string `yaml:"pulsarURL"`
	Topic     string `yaml:"topic"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type ServerConfig struct {
	RedactInternalErrors bool `yaml:"redactInternalErrors"`
}

const (
	RevocationPostgres = "postgres"
	RevocationRedis    = "redis"
	RevocationMemory   = "memory"
)

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("error parsing config file template")
		return nil, err
	}

	return render(tmpl)
}

// Parse renders and unmarshals configuration held in memory.
func Parse(raw string) (*Config, error) {
	tmpl, err := template.New("config").Parse(raw)
	if err != nil {
		return nil, err
	}
	return render(tmpl)
}

func render(tmpl *template.Template) (*Config, error) {
	// Execute the template with environment variables
	var buf bytes.Buffer
	if err := tmpl.Option("missingkey=zero").Execute(&buf, loadEnvVars()); err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost:8080"
	}
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.DocsPath == "" {
		c.DocsPath = "/docs"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 5 * time.Minute
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 24 * time.Hour
	}
	if c.Auth.UserMutationPolicy == "" {
		c.Auth.UserMutationPolicy = "any"
	}
	if c.Revocation.Backend == "" {
		c.Revocation.Backend = RevocationPostgres
	}
	if c.Revocation.Redis.Addr == "" {
		c.Revocation.Redis.Addr = "localhost:6379"
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "chat-audit"
	}
}

// Validate checks the settings the server cannot start without. It is called
// once the signing key has been resolved.
func (c *Config) Validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signingKey is empty and no secret provided it")
	}
	switch c.Revocation.Backend {
	case RevocationPostgres, RevocationRedis, RevocationMemory:
	default:
		return fmt.Errorf("unknown revocation backend %q", c.Revocation.Backend)
	}
	switch c.Auth.UserMutationPolicy {
	case "any", "self-or-staff":
	default:
		return fmt.Errorf("unknown user mutation policy %q", c.Auth.UserMutationPolicy)
	}
	if c.Auth.AccessTokenTTL < 0 || c.Auth.RefreshTokenTTL < 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
