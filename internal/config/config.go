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
	Birth  BirthConfig  `yaml:"birth" mapstructure:"birth"`
	Bike   BikeConfig   `yaml:"bike" mapstructure:"bike"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// BirthConfig locates the birth-rate table and the sigungu boundary map.
type BirthConfig struct {
	StatsPath     string `yaml:"stats_path" mapstructure:"stats_path"`
	StatsEncoding string `yaml:"stats_encoding" mapstructure:"stats_encoding"`
	HeaderOffset  int    `yaml:"header_offset" mapstructure:"header_offset"`
	NameColumn    string `yaml:"name_column" mapstructure:"name_column"`
	ValueColumn   string `yaml:"value_column" mapstructure:"value_column"`

	BoundaryPath     string `yaml:"boundary_path" mapstructure:"boundary_path"`
	BoundaryEncoding string `yaml:"boundary_encoding" mapstructure:"boundary_encoding"`
	NameField        string `yaml:"name_field" mapstructure:"name_field"`
	CodeField        string `yaml:"code_field" mapstructure:"code_field"`

	// OverridesPath replaces the embedded override table when set.
	OverridesPath string `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// BikeConfig locates the accident table and the province boundary map.
type BikeConfig struct {
	AccidentsPath    string `yaml:"accidents_path" mapstructure:"accidents_path"`
	Encoding         string `yaml:"encoding" mapstructure:"encoding"`
	BoundaryPath     string `yaml:"boundary_path" mapstructure:"boundary_path"`
	BoundaryEncoding string `yaml:"boundary_encoding" mapstructure:"boundary_encoding"`
	NameField        string `yaml:"name_field" mapstructure:"name_field"`
}

// CacheConfig configures the loader cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"` // 0 = no expiry
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	UploadMaxMB    int      `yaml:"upload_max_mb" mapstructure:"upload_max_mb"`
	UploadPerMin   int      `yaml:"upload_per_min" mapstructure:"upload_per_min"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	// .env files are optional; existing environment wins.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("birth.stats_path", "data/births.csv")
	v.SetDefault("birth.stats_encoding", "cp949")
	v.SetDefault("birth.header_offset", 2)
	// KOSIS exports put the nationwide row where the header is read, so its
	// cells name the region and metric columns.
	v.SetDefault("birth.name_column", "전국")
	v.SetDefault("birth.value_column", "0.721")
	v.SetDefault("birth.boundary_path", "data/sigungu.geojson")
	v.SetDefault("birth.boundary_encoding", "cp949")
	v.SetDefault("birth.name_field", "NAME")
	v.SetDefault("birth.code_field", "BJCD")
	v.SetDefault("birth.overrides_path", "")
	v.SetDefault("bike.accidents_path", "data/bike_accidents.csv")
	v.SetDefault("bike.encoding", "utf-8")
	v.SetDefault("bike.boundary_path", "data/ctprvn.geojson")
	v.SetDefault("bike.boundary_encoding", "cp949")
	v.SetDefault("bike.name_field", "CTP_KOR_NM")
	v.SetDefault("cache.max_entries", 16)
	v.SetDefault("cache.ttl_minutes", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.upload_max_mb", 32)
	v.SetDefault("server.upload_per_min", 6)
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

// Validate checks the fields a command needs. mode is "birth", "bike" or
// "serve" (both datasets).
func (c *Config) Validate(mode string) error {
	var missing []string
	require := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}

	checkBirth := func() {
		require("birth.stats_path", c.Birth.StatsPath)
		require("birth.name_column", c.Birth.NameColumn)
		require("birth.value_column", c.Birth.ValueColumn)
		require("birth.boundary_path", c.Birth.BoundaryPath)
		require("birth.name_field", c.Birth.NameField)
		if c.Birth.HeaderOffset < 0 {
			missing = append(missing, "birth.header_offset (>= 0)")
		}
	}
	checkBike := func() {
		require("bike.accidents_path", c.Bike.AccidentsPath)
		require("bike.boundary_path", c.Bike.BoundaryPath)
		require("bike.name_field", c.Bike.NameField)
	}

	switch mode {
	case "birth":
		checkBirth()
	case "bike":
		checkBike()
	case "serve":
		checkBirth()
		checkBike()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields for %s: %s", mode, strings.Join(missing, ", "))
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
