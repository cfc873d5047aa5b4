package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries the checker's runtime settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestDelay   time.Duration
	MaxRetries     int

	OutputDir      string
	OutputFilename string

	SheetName       string
	RegNumberColumn string
	EmailColumn     string
}

// Default returns the built-in settings used when no config file or
// environment override is present.
func Default() Config {
	return Config{
		BaseURL:         "https://russia-edu.minobrnauki.gov.ru",
		RequestTimeout:  60 * time.Second,
		RequestDelay:    1500 * time.Millisecond,
		MaxRetries:      3,
		OutputDir:       "downloads",
		OutputFilename:  "",
		SheetName:       "",
		RegNumberColumn: "№ SOLICITUD",
		EmailColumn:     "CORREO RUSO",
	}
}

// Load reads config.yaml from configPath and applies it over the defaults.
// Environment variables prefixed CHECKER_ override both.
func Load(configPath string) (Config, error) {
	// Start with default
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()          // allow environment overrides
	v.SetEnvPrefix("CHECKER") // map env vars like CHECKER_LOOKUP_BASE_URL

	v.BindEnv("lookup.base_url")
	v.BindEnv("lookup.request_timeout")
	v.BindEnv("lookup.request_delay")
	v.BindEnv("lookup.max_retries")
	v.BindEnv("output.dir")
	v.BindEnv("output.filename")
	v.BindEnv("input.sheet")
	v.BindEnv("input.reg_number_column")
	v.BindEnv("input.email_column")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	// Override defaults if values exist
	if v.IsSet("lookup.base_url") {
		cfg.BaseURL = v.GetString("lookup.base_url")
	}
	if v.IsSet("lookup.request_timeout") {
		cfg.RequestTimeout = v.GetDuration("lookup.request_timeout")
	}
	if v.IsSet("lookup.request_delay") {
		cfg.RequestDelay = v.GetDuration("lookup.request_delay")
	}
	if v.IsSet("lookup.max_retries") {
		cfg.MaxRetries = v.GetInt("lookup.max_retries")
	}
	if v.IsSet("output.dir") {
		cfg.OutputDir = v.GetString("output.dir")
	}
	if v.IsSet("output.filename") {
		cfg.OutputFilename = v.GetString("output.filename")
	}
	if v.IsSet("input.sheet") {
		cfg.SheetName = v.GetString("input.sheet")
	}
	if v.IsSet("input.reg_number_column") {
		cfg.RegNumberColumn = v.GetString("input.reg_number_column")
	}
	if v.IsSet("input.email_column") {
		cfg.EmailColumn = v.GetString("input.email_column")
	}

	return cfg, nil
}
