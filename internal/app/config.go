package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDelay           = 30 * time.Second
	DefaultAttemptTimeout  = 2 * time.Minute
	DefaultCredentialsFile = "credentials.json"
	DefaultLogFile         = "sheet2form.log"
)

// Config holds application configuration
type Config struct {
	FormURL         string
	Source          string
	Delay           time.Duration
	Headless        bool
	ChromePath      string
	UserAgent       string
	AttemptTimeout  time.Duration
	CredentialsFile string
	SSHKeyFile      string
	SSHKnownHosts   string
	LogFile         string
}

// fileConfig mirrors Config for the optional YAML config file.
type fileConfig struct {
	FormURL         string        `yaml:"formURL"`
	Source          string        `yaml:"source"`
	DelaySeconds    int           `yaml:"delaySeconds"`
	Headless        *bool         `yaml:"headless"`
	ChromePath      string        `yaml:"chromePath"`
	UserAgent       string        `yaml:"userAgent"`
	AttemptTimeout  time.Duration `yaml:"attemptTimeout"`
	CredentialsFile string        `yaml:"credentialsFile"`
	SSHKeyFile      string        `yaml:"sshKeyFile"`
	SSHKnownHosts   string        `yaml:"sshKnownHosts"`
	LogFile         string        `yaml:"logFile"`
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// RedirectLogs sends the global logger to a file. The terminal UI owns the screen,
// so log lines cannot go to stderr while it runs.
func RedirectLogs(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339})
	return f, nil
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() *Config {
	cfg := &Config{
		Delay:           DefaultDelay,
		Headless:        true,
		AttemptTimeout:  DefaultAttemptTimeout,
		CredentialsFile: DefaultCredentialsFile,
		LogFile:         DefaultLogFile,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.SSHKeyFile = filepath.Join(home, ".ssh", "id_rsa")
		cfg.SSHKnownHosts = filepath.Join(home, ".ssh", "known_hosts")
	}
	return cfg
}

// LoadConfig builds the configuration from defaults, the optional YAML file at
// path, and environment variables, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Delay < MinDelay {
		return nil, fmt.Errorf("submit delay must be at least %s, got %s", MinDelay, cfg.Delay)
	}
	if cfg.AttemptTimeout <= 0 {
		return nil, fmt.Errorf("attempt timeout must be positive, got %s", cfg.AttemptTimeout)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}

	if fc.FormURL != "" {
		cfg.FormURL = fc.FormURL
	}
	if fc.Source != "" {
		cfg.Source = fc.Source
	}
	if fc.DelaySeconds != 0 {
		cfg.Delay = time.Duration(fc.DelaySeconds) * time.Second
	}
	if fc.Headless != nil {
		cfg.Headless = *fc.Headless
	}
	if fc.ChromePath != "" {
		cfg.ChromePath = fc.ChromePath
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.AttemptTimeout != 0 {
		cfg.AttemptTimeout = fc.AttemptTimeout
	}
	if fc.CredentialsFile != "" {
		cfg.CredentialsFile = fc.CredentialsFile
	}
	if fc.SSHKeyFile != "" {
		cfg.SSHKeyFile = fc.SSHKeyFile
	}
	if fc.SSHKnownHosts != "" {
		cfg.SSHKnownHosts = fc.SSHKnownHosts
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}

	log.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("FORM_URL"); v != "" {
		cfg.FormURL = v
	}
	if v := os.Getenv("SPREADSHEET_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("SUBMIT_DELAY"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SUBMIT_DELAY must be a whole number of seconds: %w", err)
		}
		cfg.Delay = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv("BROWSER_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BROWSER_HEADLESS must be a boolean: %w", err)
		}
		cfg.Headless = headless
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("BROWSER_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("ATTEMPT_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ATTEMPT_TIMEOUT must be a duration such as 90s: %w", err)
		}
		cfg.AttemptTimeout = timeout
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("SSH_KEY_FILE"); v != "" {
		cfg.SSHKeyFile = v
	}
	if v := os.Getenv("SSH_KNOWN_HOSTS"); v != "" {
		cfg.SSHKnownHosts = v
	}
	if v := os.Getenv("SHEET2FORM_LOG"); v != "" {
		cfg.LogFile = v
	}
	return nil
}
