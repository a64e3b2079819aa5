package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// The mapstructure tags are used by Viper to unmarshal the data.
type Config struct {
	ServiceName     string        `mapstructure:"service_name"`
	HTTPListenAddr  string        `mapstructure:"http_listen_addr"`
	PostgresDSN     string        `mapstructure:"postgres_dsn"`
	CallbackTimeout time.Duration `mapstructure:"callback_timeout"`
}

// Load reads configuration from an optional config file and environment
// variables, with defaults for everything except the database DSN.
func Load() (*Config, error) {
	viper.SetDefault("service_name", "chase-linker-payout")
	viper.SetDefault("http_listen_addr", ":5555")
	viper.SetDefault("callback_timeout", "15s")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	// Unmarshal only materializes keys viper knows about; keys without a
	// default must be bound explicitly or env-only values never load.
	for _, key := range []string{"service_name", "http_listen_addr", "postgres_dsn", "callback_timeout"} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
