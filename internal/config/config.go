package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

const (
	EnvConfigPath     = "ARCHIVIST_CONFIG"
	DefaultConfigPath = "/etc/archivist/config.yaml"

	defaultListen           = ":8000"
	defaultManifestService  = "http://generate-manifests.orphe.us"
	defaultManifestTimeout  = 10 * time.Second
	defaultMigrationTimeout = 30 * time.Second
)

type Config struct {
	Server    Server    `yaml:"server"`
	Auth      Auth      `yaml:"auth"`
	Manifest  Manifest  `yaml:"manifest"`
	Migration Migration `yaml:"migration"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	LogLevel      string `yaml:"logLevel"`  // debug, info, warn, error
	LogFormat     string `yaml:"logFormat"` // json, text
}

type Auth struct {
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
}

type Manifest struct {
	ServiceURL  string `yaml:"serviceURL"`
	ResponseURL string `yaml:"responseURL"`
	TimeoutStr  string `yaml:"timeout"`

	Timeout time.Duration `yaml:"-"`
}

// Endpoint is the generator's manifest intake URL.
func (m Manifest) Endpoint() string {
	return strings.TrimRight(m.ServiceURL, "/") + "/manifests"
}

type Migration struct {
	Endpoint   string `yaml:"endpoint"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TimeoutStr string `yaml:"timeout"`

	Timeout time.Duration `yaml:"-"`
}

// Path returns the config file location, honoring ARCHIVIST_CONFIG.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to open config")
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes a YAML config and fills in defaults.
func Parse(r io.Reader) (Config, error) {
	var config Config
	err := yaml.NewDecoder(r).Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	if config.Server.Listen == "" {
		config.Server.Listen = defaultListen
	}
	if config.Manifest.ServiceURL == "" {
		config.Manifest.ServiceURL = defaultManifestService
	}

	config.Manifest.Timeout, err = parseDuration(config.Manifest.TimeoutStr, defaultManifestTimeout)
	if err != nil {
		return Config{}, errors.Wrap(err, "manifest.timeout")
	}
	config.Migration.Timeout, err = parseDuration(config.Migration.TimeoutStr, defaultMigrationTimeout)
	if err != nil {
		return Config{}, errors.Wrap(err, "migration.timeout")
	}

	return config, nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger installs the process wide slog logger.
func SetupLogger(cfg Server) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
