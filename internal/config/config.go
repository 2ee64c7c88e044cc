package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appDirName = "skilllink"
	configName = "config"
	configType = "toml"
	envPrefix  = "SKILLLINK"

	KeyAPIURL          = "api_url"
	KeySocketURL       = "socket_url"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyHTTPTimeout     = "http.timeout"
	KeyHTTPRateLimit   = "http.rate_limit"
	KeyHTTPBurst       = "http.burst"
	KeySecretsBackend  = "secrets.backend"
	KeySecretsDir      = "secrets.dir"
	KeyPreferencesPath = "preferences.path"

	DefaultAPIURL = "http://localhost:3001"

	SecretsBackendChain = "chain"
	SecretsBackendFile  = "file"
)

type Config struct {
	Dir             string
	APIURL          string
	SocketURL       string
	LogLevel        string
	LogFormat       string
	HTTP            HTTPConfig
	Secrets         SecretsConfig
	PreferencesPath string
}

type HTTPConfig struct {
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

type SecretsConfig struct {
	Backend string
	Dir     string
}

// Dir resolves $XDG_CONFIG_HOME/skilllink, falling back to ~/.config/skilllink.
func Dir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appDirName), nil
}

// LoadDotEnv exports variables from the given files (default .env) into the
// process environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}

func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyAPIURL, envPrefix+"_API_URL", "VITE_API_URL"); err != nil {
		return Config{}, fmt.Errorf("bind api url env: %w", err)
	}

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyHTTPRateLimit, 0)
	v.SetDefault(KeyHTTPBurst, 1)
	v.SetDefault(KeySecretsBackend, SecretsBackendChain)
	v.SetDefault(KeySecretsDir, filepath.Join(dir, "secrets"))
	v.SetDefault(KeyPreferencesPath, filepath.Join(dir, "preferences.toml"))

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Dir:       dir,
		APIURL:    strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		SocketURL: strings.TrimRight(strings.TrimSpace(v.GetString(KeySocketURL)), "/"),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
		HTTP: HTTPConfig{
			Timeout:   v.GetDuration(KeyHTTPTimeout),
			RateLimit: v.GetFloat64(KeyHTTPRateLimit),
			Burst:     v.GetInt(KeyHTTPBurst),
		},
		Secrets: SecretsConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString(KeySecretsBackend))),
			Dir:     v.GetString(KeySecretsDir),
		},
		PreferencesPath: v.GetString(KeyPreferencesPath),
	}
	if cfg.SocketURL == "" {
		cfg.SocketURL = cfg.APIURL
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validateBaseURL(KeyAPIURL, c.APIURL); err != nil {
		return err
	}
	if err := validateBaseURL(KeySocketURL, c.SocketURL); err != nil {
		return err
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyHTTPTimeout)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("%s must not be negative", KeyHTTPRateLimit)
	}
	switch c.Secrets.Backend {
	case SecretsBackendChain, SecretsBackendFile:
	default:
		return fmt.Errorf("unsupported %s %q", KeySecretsBackend, c.Secrets.Backend)
	}
	if strings.TrimSpace(c.PreferencesPath) == "" {
		return fmt.Errorf("%s is empty", KeyPreferencesPath)
	}
	return nil
}

func validateBaseURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}
