// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	StreetView StreetViewConfig `yaml:"streetview" mapstructure:"streetview"`
	Detector   DetectorConfig   `yaml:"detector" mapstructure:"detector"`
	Reports    ReportsConfig    `yaml:"reports" mapstructure:"reports"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	UI         UIConfig         `yaml:"ui" mapstructure:"ui"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds the Maps Platform credentials shared by the geocoding
// and street view clients.
type GoogleConfig struct {
	APIKey string  `yaml:"api_key" mapstructure:"api_key"`
	RPS    float64 `yaml:"rps" mapstructure:"rps"`
}

// StreetViewConfig configures the imagery request.
type StreetViewConfig struct {
	Size    string `yaml:"size" mapstructure:"size"`
	FOV     int    `yaml:"fov" mapstructure:"fov"`
	Heading int    `yaml:"heading" mapstructure:"heading"`
	Pitch   int    `yaml:"pitch" mapstructure:"pitch"`
}

// DetectorConfig configures the detection model.
type DetectorConfig struct {
	ModelPath     string `yaml:"model_path" mapstructure:"model_path"`
	NamesPath     string `yaml:"names_path" mapstructure:"names_path"`
	InputSize     int    `yaml:"input_size" mapstructure:"input_size"`
	MaxDetections int    `yaml:"max_detections" mapstructure:"max_detections"`
}

// ReportsConfig configures report output.
type ReportsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// UIConfig holds the cosmetic toggles the frontend reads; the two historical
// script variants differed only in these values.
type UIConfig struct {
	BackgroundImage string `yaml:"background_image" mapstructure:"background_image"`
	ShowMapLink     bool   `yaml:"show_map_link" mapstructure:"show_map_link"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// Pick up a local .env if present; ignore its absence.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ROADSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys with no meaningful default still get an empty one:
	// AutomaticEnv only surfaces keys viper already knows to Unmarshal.
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.rps", 10.0)
	v.SetDefault("streetview.size", "640x640")
	v.SetDefault("streetview.fov", 80)
	v.SetDefault("streetview.heading", 0)
	v.SetDefault("streetview.pitch", 0)
	v.SetDefault("detector.model_path", "best.onnx")
	v.SetDefault("detector.names_path", "best.names")
	v.SetDefault("detector.input_size", 640)
	v.SetDefault("detector.max_detections", 100)
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("server.port", 8080)
	v.SetDefault("ui.background_image", "")
	v.SetDefault("ui.show_map_link", true)
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

// Validate checks the required settings. The Maps API key has no default and
// no fallback; without it neither geocoding nor imagery can work.
func (c *Config) Validate() error {
	if c.Google.APIKey == "" {
		return eris.New("config: google.api_key is required (set ROADSCAN_GOOGLE_API_KEY)")
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
