package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Convex   ConvexConfig   `yaml:"convex" mapstructure:"convex"`
	LiveKit  LiveKitConfig  `yaml:"livekit" mapstructure:"livekit"`
	PDFText  PDFTextConfig  `yaml:"pdftext" mapstructure:"pdftext"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ConvexConfig holds the persistence service endpoint settings.
type ConvexConfig struct {
	URL               string  `yaml:"url" mapstructure:"url"`
	Function          string  `yaml:"function" mapstructure:"function"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LiveKitConfig holds the voice-call service credentials.
type LiveKitConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	APISecret string `yaml:"api_secret" mapstructure:"api_secret"`
}

// PDFTextConfig configures PDF text extraction.
type PDFTextConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// PipelineConfig configures extraction behavior.
type PipelineConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the voice-call web API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("convex.url", "https://marvelous-emu-964.convex.cloud")
	v.SetDefault("convex.function", "processInvoice")
	v.SetDefault("convex.timeout_secs", 60)
	v.SetDefault("convex.requests_per_second", 5)
	v.SetDefault("livekit.url", "wss://phantompay-lhq52otl.livekit.cloud")
	v.SetDefault("pdftext.provider", "pdflib")
	v.SetDefault("pdftext.pdftotext_path", "pdftotext")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "invoice-cli.db")
	v.SetDefault("server.port", 5001)
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

// Validate checks the settings required by the named component.
func (c *Config) Validate(component string) error {
	switch component {
	case "pipeline":
		if c.Convex.URL == "" {
			return eris.New("config: convex.url is required")
		}
	case "serve":
		if c.LiveKit.URL == "" {
			return eris.New("config: livekit.url is required")
		}
		if c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "" {
			return eris.New("config: livekit.api_key and livekit.api_secret are required")
		}
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
