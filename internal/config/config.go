// Package config loads relay settings from environment variables and an
// optional YAML file. Values follow the GLOBALCHAT_<SECTION>_<OPTION>
// pattern, e.g. GLOBALCHAT_PORT or GLOBALCHAT_VERIFY_BASE_URL, and every
// setting has a default matching the production deployment.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GLOBALCHAT"

// RateConfig holds the tunables of one token bucket.
type RateConfig struct {
	PerSecond float64
	Burst     int
}

// Config holds every runtime setting of the relay.
type Config struct {
	Port            string
	AllowedOrigins  []string
	BadWordsFile    string
	VerifyBaseURL   string
	VerifyOrigin    string
	VerifyTimeout   time.Duration
	ConnectionRate  RateConfig
	MessageRate     RateConfig
	HistoryLimit    int
	MaxMessageLen   int
	MaxFrameBytes   int64
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", ":3000")
	v.SetDefault("allowed_origins", []string{
		"https://slcount.netlify.app",
		"https://slgame.netlify.app",
		"https://serve.gamejolt.net",
		"http://serve.gamejolt.net",
		"https://html-classic.itch.zone",
		"tw-editor://.",
	})
	v.SetDefault("badwords_file", "badwords.txt")
	v.SetDefault("verify.base_url", "https://liquemgames-api.netlify.app")
	v.SetDefault("verify.origin", "tw-editor://.")
	v.SetDefault("verify.timeout", "10s")
	v.SetDefault("rates.connection.per_second", 1.0)
	v.SetDefault("rates.connection.burst", 5)
	v.SetDefault("rates.message.per_second", 1.0)
	v.SetDefault("rates.message.burst", 1)
	v.SetDefault("history.limit", 4)
	v.SetDefault("message.max_length", 100)
	v.SetDefault("message.max_frame_bytes", 512)
	v.SetDefault("shutdown_timeout", "10s")
}

// Load reads configuration from the given file, or from .globalchat.yml in
// the working directory when file is empty, then applies environment
// overrides. A missing default config file is not an error; a missing
// explicit one is.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName(".globalchat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Port:           v.GetString("port"),
		AllowedOrigins: originList(v.GetStringSlice("allowed_origins")),
		BadWordsFile:   v.GetString("badwords_file"),
		VerifyBaseURL:  v.GetString("verify.base_url"),
		VerifyOrigin:   v.GetString("verify.origin"),
		VerifyTimeout:  v.GetDuration("verify.timeout"),
		ConnectionRate: RateConfig{
			PerSecond: v.GetFloat64("rates.connection.per_second"),
			Burst:     v.GetInt("rates.connection.burst"),
		},
		MessageRate: RateConfig{
			PerSecond: v.GetFloat64("rates.message.per_second"),
			Burst:     v.GetInt("rates.message.burst"),
		},
		HistoryLimit:    v.GetInt("history.limit"),
		MaxMessageLen:   v.GetInt("message.max_length"),
		MaxFrameBytes:   v.GetInt64("message.max_frame_bytes"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	sanitize(cfg)
	return cfg, nil
}

// originList flattens comma-separated entries so the allow-list can be set
// through a single environment variable.
func originList(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, origin := range strings.Split(entry, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed == "" {
				continue
			}
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func sanitize(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = ":3000"
	}
	if !strings.HasPrefix(cfg.Port, ":") && !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 10 * time.Second
	}
	if cfg.ConnectionRate.PerSecond <= 0 {
		cfg.ConnectionRate.PerSecond = 1
	}
	if cfg.ConnectionRate.Burst <= 0 {
		cfg.ConnectionRate.Burst = 1
	}
	if cfg.MessageRate.PerSecond <= 0 {
		cfg.MessageRate.PerSecond = 1
	}
	if cfg.MessageRate.Burst <= 0 {
		cfg.MessageRate.Burst = 1
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 4
	}
	if cfg.MaxMessageLen <= 0 {
		cfg.MaxMessageLen = 100
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = 512
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}
