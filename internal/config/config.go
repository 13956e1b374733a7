package config

import "github.com/spf13/viper"

type Config struct {
	ConfigDir string `mapstructure:"CONFIG_DIR"`
	TrackDir  string `mapstructure:"TRACK_DIR"`
	BaseURL   string `mapstructure:"BASE_URL"`
}

func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("GOOSE")
	v.AutomaticEnv()
	v.SetDefault("CONFIG_DIR", "config")
	v.SetDefault("TRACK_DIR", "resources/default_tracks")
	v.SetDefault("BASE_URL", "")

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
