package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int    `yaml:"port"`
	DefaultRoom string `yaml:"default_room"`
	StaticDir   string `yaml:"static_dir"`

	// Survey service
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	AdminPassword     string        `yaml:"admin_password"`
	ValidatorCooldown time.Duration `yaml:"validator_cooldown"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`

	// Telegram front-end, disabled when empty.
	TelegramToken string `yaml:"telegram_token"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaults() Config {
	return Config{
		Port:              5000,
		DefaultRoom:       "demo",
		StaticDir:         "static",
		BaseURL:           "https://vote2.telekom.net/api/v1",
		ValidatorCooldown: 1500 * time.Millisecond,
		HTTPTimeout:       30 * time.Second,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load builds the configuration from, in increasing precedence: defaults, the
// YAML file named by -config or VOTEBOT_CONFIG, the environment (after
// loading the -env file, ".env" by default), and command line flags.
func Load(args []string) (Config, error) {
	fset := flag.NewFlagSet("votebot", flag.ContinueOnError)
	configPath := fset.String("config", "", "YAML configuration file")
	envFile := fset.String("env", ".env", "dotenv file loaded into the environment")
	port := fset.Int("port", 0, "HTTP port")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading %s: %w", *envFile, err)
	}

	cfg := defaults()

	path := *configPath
	if path == "" {
		path = os.Getenv("VOTEBOT_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if *port != 0 {
		cfg.Port = *port
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("API_KEY", &cfg.APIKey)
	setString("ADMIN_PASS", &cfg.AdminPassword)
	setString("VOTE_API_BASE_URL", &cfg.BaseURL)
	setString("TELEGRAM_BOT_TOKEN", &cfg.TelegramToken)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOG_FORMAT", &cfg.LogFormat)
	setString("DEFAULT_ROOM", &cfg.DefaultRoom)
	setString("STATIC_DIR", &cfg.StaticDir)

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = p
	}

	for key, dst := range map[string]*time.Duration{
		"VALIDATOR_COOLDOWN": &cfg.ValidatorCooldown,
		"HTTP_TIMEOUT":       &cfg.HTTPTimeout,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s env variable: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// MissingSecrets names the required secrets that are not set. They are not
// enforced: remote calls without them simply fail.
func (c Config) MissingSecrets() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASS")
	}
	return missing
}
