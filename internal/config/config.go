package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	StaticDir           string `mapstructure:"static_dir"`
}

type LogCfg struct {
	Development bool `mapstructure:"development"`
}

type StoreCfg struct {
	Path string `mapstructure:"path"`
}

type ChatCfg struct {
	HistoryLimit int `mapstructure:"history_limit"`
}

type RedisCfg struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	Prefix        string `mapstructure:"prefix"`
	Limit         int    `mapstructure:"limit"`
	WindowSeconds int    `mapstructure:"window_seconds"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	Server ServerCfg `mapstructure:"server"`
	Log    LogCfg    `mapstructure:"log"`
	Store  StoreCfg  `mapstructure:"store"`
	Chat   ChatCfg   `mapstructure:"chat"`
	Redis  RedisCfg  `mapstructure:"redis"`
	Kafka  KafkaCfg  `mapstructure:"kafka"`
	// Derived
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RateLimitWindow time.Duration
}

// Load reads the optional config file at path and applies APP_* environment
// overrides (APP_SERVER_PORT, APP_STORE_PATH, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "chat.db"
	}
	if cfg.Chat.HistoryLimit == 0 {
		cfg.Chat.HistoryLimit = 50
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "chat:ratelimit"
	}
	if cfg.Redis.Limit == 0 {
		cfg.Redis.Limit = 30
	}
	if cfg.Redis.WindowSeconds == 0 {
		cfg.Redis.WindowSeconds = 60
	}
	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.RateLimitWindow = time.Duration(cfg.Redis.WindowSeconds) * time.Second
	return &cfg, nil
}
