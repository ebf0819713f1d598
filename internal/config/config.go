package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        App        `mapstructure:"app"`
	Server     Server     `mapstructure:"server"`
	Wiki       Wiki       `mapstructure:"wiki"`
	Wikidata   Wikidata   `mapstructure:"wikidata"`
	Candidates Candidates `mapstructure:"candidates"`
	Curation   Curation   `mapstructure:"curation"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORS          `mapstructure:"cors"`
}

// CORS holds CORS middleware configuration.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Wiki holds encyclopedic feed client configuration.
type Wiki struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Wikidata holds entity-fact client configuration.
type Wikidata struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Candidates holds generative candidate provider configuration.
type Candidates struct {
	Enabled  bool          `mapstructure:"enabled"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxItems int           `mapstructure:"max_items"`
}

// Curation holds the pipeline's tuning knobs. The strict/lenient
// category treatment and the regional share band are policy knobs, not
// architectural constants, so they live here rather than in code.
type Curation struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MinLimit     int `mapstructure:"min_limit"`
	MaxLimit     int `mapstructure:"max_limit"`

	TargetRatio   float64 `mapstructure:"target_ratio"`
	BandHighRatio float64 `mapstructure:"band_high_ratio"`

	BirthDeathMax int `mapstructure:"birth_death_max"`
	BattleMax     int `mapstructure:"battle_max"`

	SummaryMax      int `mapstructure:"summary_max"`
	NoteAppendUnder int `mapstructure:"note_append_under"`

	StrictKeywords    []string `mapstructure:"strict_keywords"`
	LenientCategories []string `mapstructure:"lenient_categories"`

	VerifyConcurrency int `mapstructure:"verify_concurrency"`
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`
}

// Logging holds logging configuration.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from file, environment and defaults.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".almanac")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", false)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	// Wiki feed defaults
	viper.SetDefault("wiki.base_url", "https://en.wikipedia.org/api/rest_v1")
	viper.SetDefault("wiki.user_agent", "Almanac/1.0")
	viper.SetDefault("wiki.timeout", "15s")

	// Wikidata defaults
	viper.SetDefault("wikidata.base_url", "https://www.wikidata.org")
	viper.SetDefault("wikidata.timeout", "15s")

	// Candidate provider defaults
	viper.SetDefault("candidates.enabled", true)
	viper.SetDefault("candidates.model", "gemini-2.0-flash")
	viper.SetDefault("candidates.timeout", "45s")
	viper.SetDefault("candidates.max_items", 36)

	// Curation defaults
	viper.SetDefault("curation.default_limit", 25)
	viper.SetDefault("curation.min_limit", 10)
	viper.SetDefault("curation.max_limit", 30)
	viper.SetDefault("curation.target_ratio", 0.70)
	viper.SetDefault("curation.band_high_ratio", 0.85)
	viper.SetDefault("curation.birth_death_max", 6)
	viper.SetDefault("curation.battle_max", 3)
	viper.SetDefault("curation.summary_max", 560)
	viper.SetDefault("curation.note_append_under", 240)
	viper.SetDefault("curation.strict_keywords", []string{"treaty", "accord", "agreement"})
	viper.SetDefault("curation.lenient_categories", []string{"birth", "death"})
	viper.SetDefault("curation.verify_concurrency", 8)
	viper.SetDefault("curation.enrich_concurrency", 6)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("candidates.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// PORT arrives as a string; parse it so unmarshaling into the int
	// field does not reject it.
	if value := os.Getenv("PORT"); value != "" {
		if port, err := strconv.Atoi(value); err == nil {
			viper.Set("server.port", port)
		}
	}
}

// bindEnvKeys binds a config key to multiple possible environment variables
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			return
		}
	}
}

func validateConfig(config *Config) error {
	if config.Curation.MinLimit < 1 || config.Curation.MaxLimit < config.Curation.MinLimit {
		return fmt.Errorf("invalid limit bounds: min %d max %d", config.Curation.MinLimit, config.Curation.MaxLimit)
	}
	if config.Curation.TargetRatio <= 0 || config.Curation.TargetRatio > 1 {
		return fmt.Errorf("curation.target_ratio must be in (0, 1], got %v", config.Curation.TargetRatio)
	}
	if config.Curation.BandHighRatio < config.Curation.TargetRatio || config.Curation.BandHighRatio > 1 {
		return fmt.Errorf("curation.band_high_ratio must be in [target_ratio, 1], got %v", config.Curation.BandHighRatio)
	}
	return nil
}
