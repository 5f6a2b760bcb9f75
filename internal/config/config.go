package config

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultGeoJSONURLs are the mirrors of the 81-province boundary file, in
// the order they are tried.
var DefaultGeoJSONURLs = []string{
	"https://raw.githubusercontent.com/cihadturhan/geojson/main/tr-81-il.geojson",
	"https://raw.githubusercontent.com/cihadturhan/geojson/master/tr-81-il.geojson",
}

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the boundary cache file and the cultural metadata.
type DataConfig struct {
	GeoJSONPath   string   `yaml:"geojson_path" mapstructure:"geojson_path"`
	GeoJSONURLs   []string `yaml:"geojson_urls" mapstructure:"geojson_urls"`
	ProvincesPath string   `yaml:"provinces_path" mapstructure:"provinces_path"`
}

// FetchConfig configures the HTTP client used for the boundary download.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// MaxAttempts is requests per mirror. Only 1 is accepted: a cache miss
	// never retries a mirror.
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig configures the provisioning history database. An empty
// DatabaseURL disables history.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROVMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.geojson_path", "data/tr-81-il.geojson")
	v.SetDefault("data.geojson_urls", DefaultGeoJSONURLs)
	v.SetDefault("data.provinces_path", "data/provinces.json")
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.max_attempts", 1)
	v.SetDefault("fetch.user_agent", "province-map/1.0")
	v.SetDefault("store.database_url", "data/province-map.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is "ensure" for
// commands that only provision and read data, "serve" for the API server.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Data.GeoJSONPath == "" {
		problems = append(problems, "data.geojson_path is required")
	}
	if len(c.Data.GeoJSONURLs) == 0 {
		problems = append(problems, "data.geojson_urls needs at least one URL")
	}
	for _, raw := range c.Data.GeoJSONURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, "data.geojson_urls: invalid URL "+raw)
		}
	}
	if c.Fetch.TimeoutSecs <= 0 {
		problems = append(problems, "fetch.timeout_secs must be positive")
	}
	switch {
	case c.Fetch.MaxAttempts <= 0:
		problems = append(problems, "fetch.max_attempts must be positive")
	case c.Fetch.MaxAttempts > 1:
		problems = append(problems, "fetch.max_attempts must be 1, mirrors are not retried")
	}

	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
