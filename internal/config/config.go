package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type CredentialProviderConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Config struct {
	DatabaseURL string                   `mapstructure:"database_url"`
	ServerPort  string                   `mapstructure:"server_port"`
	JWTSecret   string                   `mapstructure:"jwt_secret"`
	BaseURL     string                   `mapstructure:"base_url"`
	Credential  CredentialProviderConfig `mapstructure:"credential_provider"`
	// PlanLimits overrides the built-in seat limits per plan name.
	PlanLimits map[string]int `mapstructure:"plan_limits"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:" + config.ServerPort
	}
	if config.Credential.Timeout == 0 {
		config.Credential.Timeout = 10 * time.Second
	}

	return &config
}
