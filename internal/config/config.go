// Package config initializes the application's configuration. It uses Viper
// to read settings from a config file, environment variables, and defaults,
// providing a unified configuration system.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Init installs defaults, config file search paths, and env binding. Called
// once at startup before any Load.
func Init() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/mcpserver/")
	viper.AddConfigPath("$HOME/.mcpserver")

	const defaultUA = "infinite-crawler/1.0 (+https://github.com/sasif-infinite/mcp)"
	viper.SetDefault("crawler.origin", "https://www.infinite.com/")
	viper.SetDefault("crawler.user_agent", defaultUA)
	viper.SetDefault("crawler.max_pages", 40)
	viper.SetDefault("crawler.max_depth", 2)
	viper.SetDefault("crawler.request_timeout", "10s")
	viper.SetDefault("crawler.index_path", "data/index.json")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.development", false)

	viper.SetEnvPrefix("MCP") // e.g. MCP_SERVER_PORT=9000
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// MCP_HOST / MCP_PORT keep the historical container interface.
	_ = viper.BindEnv("server.host", "MCP_HOST", "MCP_SERVER_HOST")
	_ = viper.BindEnv("server.port", "MCP_PORT", "MCP_SERVER_PORT")
	// The demo secret tool reads the same variable the original deployment used.
	_ = viper.BindEnv("secrets.my_secret_key", "MY_SECRET_KEY")

	// A missing config file is fine: defaults plus env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("error reading config file: %v\n", err)
		}
	}
}

// Crawler holds the crawl engine settings.
type Crawler struct {
	Origin         string
	UserAgent      string
	MaxPages       int
	MaxDepth       int
	RequestTimeout time.Duration
	IndexPath      string
}

// Server holds the transport settings.
type Server struct {
	Host        string
	Port        int
	Development bool
}

// Config is the full application configuration.
type Config struct {
	Crawler Crawler
	Server  Server
	Secret  string
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Crawler: Crawler{
			Origin:         v.GetString("crawler.origin"),
			UserAgent:      v.GetString("crawler.user_agent"),
			MaxPages:       v.GetInt("crawler.max_pages"),
			MaxDepth:       v.GetInt("crawler.max_depth"),
			RequestTimeout: v.GetDuration("crawler.request_timeout"),
			IndexPath:      v.GetString("crawler.index_path"),
		},
		Server: Server{
			Host:        v.GetString("server.host"),
			Port:        v.GetInt("server.port"),
			Development: v.GetBool("server.development"),
		},
		Secret: v.GetString("secrets.my_secret_key"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.Crawler.Origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("crawler.origin must be an absolute URL")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.Crawler.IndexPath == "" {
		return fmt.Errorf("crawler.index_path must be set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port number")
	}
	return nil
}
