package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/spots-occitanie/internal/pkg/validator"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Download DownloadConfig
	Geocode  GeocodeConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	SpotsPath    string `validate:"required"`
	BusyTimeout  time.Duration
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type DownloadConfig struct {
	Workers        int           `validate:"min=1,max=16"`
	RequestTimeout time.Duration
	RequestDelay   time.Duration
	MaxRetries     int
	UserAgent      string
}

type GeocodeConfig struct {
	BANBaseURL       string `validate:"required,url"`
	NominatimBaseURL string `validate:"required,url"`
	AltimetryBaseURL string `validate:"required,url"`
	RequestTimeout   time.Duration
	NominatimDelay   time.Duration
	BatchSize        int `validate:"min=1,max=200"`
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// a missing .env is fine, env vars alone are enough
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVE_HOST"),
			Port: viper.GetInt("SERVE_PORT"),
		},
		Database: DatabaseConfig{
			SpotsPath:    viper.GetString("SPOTS_DB"),
			BusyTimeout:  time.Duration(viper.GetInt("DB_BUSY_TIMEOUT")) * time.Millisecond,
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			TTL:      time.Duration(viper.GetInt("REDIS_TTL")) * time.Second,
		},
		Download: DownloadConfig{
			Workers:        viper.GetInt("DOWNLOAD_WORKERS"),
			RequestTimeout: time.Duration(viper.GetInt("DOWNLOAD_TIMEOUT")) * time.Second,
			RequestDelay:   time.Duration(viper.GetInt("DOWNLOAD_DELAY")) * time.Millisecond,
			MaxRetries:     viper.GetInt("DOWNLOAD_MAX_RETRIES"),
			UserAgent:      viper.GetString("DOWNLOAD_USER_AGENT"),
		},
		Geocode: GeocodeConfig{
			BANBaseURL:       viper.GetString("BAN_BASE_URL"),
			NominatimBaseURL: viper.GetString("NOMINATIM_BASE_URL"),
			AltimetryBaseURL: viper.GetString("ALTIMETRY_BASE_URL"),
			RequestTimeout:   time.Duration(viper.GetInt("GEOCODE_TIMEOUT")) * time.Second,
			NominatimDelay:   time.Duration(viper.GetInt("NOMINATIM_DELAY")) * time.Millisecond,
			BatchSize:        viper.GetInt("ALTIMETRY_BATCH_SIZE"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8123
	}
	if cfg.Database.SpotsPath == "" {
		cfg.Database.SpotsPath = "spots.sqlite"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5000 * time.Millisecond
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 30 * 24 * time.Hour
	}
	if cfg.Download.Workers == 0 {
		cfg.Download.Workers = 4
	}
	if cfg.Download.RequestTimeout == 0 {
		cfg.Download.RequestTimeout = 30 * time.Second
	}
	if cfg.Download.RequestDelay == 0 {
		cfg.Download.RequestDelay = 100 * time.Millisecond
	}
	if cfg.Download.MaxRetries == 0 {
		cfg.Download.MaxRetries = 3
	}
	if cfg.Download.UserAgent == "" {
		cfg.Download.UserAgent = "spots-occitanie/1.0 (personal hobby project)"
	}
	if cfg.Geocode.BANBaseURL == "" {
		cfg.Geocode.BANBaseURL = "https://api-adresse.data.gouv.fr"
	}
	if cfg.Geocode.NominatimBaseURL == "" {
		cfg.Geocode.NominatimBaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocode.AltimetryBaseURL == "" {
		cfg.Geocode.AltimetryBaseURL = "https://data.geopf.fr/altimetrie/1.0/calcul/alti/rest"
	}
	if cfg.Geocode.RequestTimeout == 0 {
		cfg.Geocode.RequestTimeout = 15 * time.Second
	}
	if cfg.Geocode.NominatimDelay == 0 {
		cfg.Geocode.NominatimDelay = 1100 * time.Millisecond
	}
	if cfg.Geocode.BatchSize == 0 {
		cfg.Geocode.BatchSize = 50
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
