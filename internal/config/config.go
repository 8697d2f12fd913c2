package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Transport names accepted by the server.
const (
	TransportStreamableHTTP = "streamable-http"
	TransportStdio          = "stdio"
)

const defaultServerName = "sp500-portfolio-analysis-v2"

// Config holds the runtime settings for the analysis server. Values come
// from TARIFFSCOPE_* environment variables with the defaults below;
// command-line flags may override individual fields after Load.
type Config struct {
	ServerName string
	Transport  string
	Host       string
	Port       int

	LogLevel       string
	LogFormat      string
	LogDevelopment bool

	Data DataConfig
}

// DataConfig selects the dataset source. Exactly one of S3 (bucket set),
// URL, or File is used, in that precedence order.
type DataConfig struct {
	File string
	URL  string
	S3   S3Config
}

// S3Config holds object-store settings for the dataset source.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TARIFFSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.name", defaultServerName)
	v.SetDefault("transport", TransportStreamableHTTP)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8001)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)
	v.SetDefault("data.file", "data/sp500_style_portfolio_60.csv")
	v.SetDefault("data.url", "")
	v.SetDefault("data.s3.endpoint", "")
	v.SetDefault("data.s3.region", "us-east-1")
	v.SetDefault("data.s3.bucket", "")
	v.SetDefault("data.s3.key", "")
	v.SetDefault("data.s3.access_key_id", "")
	v.SetDefault("data.s3.secret_access_key", "")
	v.SetDefault("data.s3.use_ssl", true)

	// The original deployment names the server through this variable;
	// keep honoring it alongside the prefixed form.
	if err := v.BindEnv("server.name", "TARIFFSCOPE_SERVER_NAME", "MCP_FASTMCP_SERVER_NAME"); err != nil {
		return nil, fmt.Errorf("failed to bind server name: %w", err)
	}

	cfg := &Config{
		ServerName:     v.GetString("server.name"),
		Transport:      v.GetString("transport"),
		Host:           v.GetString("host"),
		Port:           v.GetInt("port"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
		LogDevelopment: v.GetBool("log.development"),
		Data: DataConfig{
			File: v.GetString("data.file"),
			URL:  v.GetString("data.url"),
			S3: S3Config{
				Endpoint:        v.GetString("data.s3.endpoint"),
				Region:          v.GetString("data.s3.region"),
				Bucket:          v.GetString("data.s3.bucket"),
				Key:             v.GetString("data.s3.key"),
				AccessKeyID:     v.GetString("data.s3.access_key_id"),
				SecretAccessKey: v.GetString("data.s3.secret_access_key"),
				UseSSL:          v.GetBool("data.s3.use_ssl"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and the dataset source combination.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStreamableHTTP, TransportStdio:
	default:
		return fmt.Errorf("unsupported transport %q (want %q or %q)",
			c.Transport, TransportStreamableHTTP, TransportStdio)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	if c.Data.S3.Bucket != "" {
		required := map[string]string{
			"data.s3.key":               c.Data.S3.Key,
			"data.s3.access_key_id":     c.Data.S3.AccessKeyID,
			"data.s3.secret_access_key": c.Data.S3.SecretAccessKey,
		}
		for field, value := range required {
			if value == "" {
				return fmt.Errorf("required field '%s' is missing or empty", field)
			}
		}
	}

	if c.Data.S3.Bucket == "" && c.Data.URL == "" && c.Data.File == "" {
		return fmt.Errorf("no dataset source configured")
	}

	return nil
}
