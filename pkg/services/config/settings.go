package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix          = "FRAUD_ATLAS"
	defaultProfileFile = ".fraudatlascfg"
)

type Settings struct {
	Service   ServiceSettings   `mapstructure:"service"`
	Table     TableSettings     `mapstructure:"table"`
	Training  TrainingSettings  `mapstructure:"training"`
	Dashboard DashboardSettings `mapstructure:"dashboard"`
	Cache     CacheSettings     `mapstructure:"cache"`
	Server    ServerSettings    `mapstructure:"server"`
	Log       LogSettings       `mapstructure:"log"`
}

type ServiceSettings struct {
	BaseURL         string        `mapstructure:"base_url"`
	Profile         string        `mapstructure:"profile"`
	ProfilesPath    string        `mapstructure:"profiles_path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	TrainingTimeout time.Duration `mapstructure:"training_timeout"`
}

type TableSettings struct {
	PageSize int `mapstructure:"page_size"`
}

type TrainingSettings struct {
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

type DashboardSettings struct {
	Timezone          string `mapstructure:"timezone"`
	SortChronological bool   `mapstructure:"sort_chronological"`
}

type CacheSettings struct {
	// Path of the sqlite snapshot cache. Empty disables caching.
	Path string `mapstructure:"path"`
	Keep int    `mapstructure:"keep"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// NewViper returns a viper instance with every key defaulted and bound to
// FRAUD_ATLAS_* environment variables (service.base_url -> FRAUD_ATLAS_SERVICE_BASE_URL).
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("service.base_url", "http://localhost:8000")
	v.SetDefault("service.profile", "")
	v.SetDefault("service.profiles_path", defaultProfilesPath())
	v.SetDefault("service.timeout", 30*time.Second)
	v.SetDefault("service.training_timeout", 30*time.Minute)
	v.SetDefault("table.page_size", 10)
	v.SetDefault("training.progress_interval", 500*time.Millisecond)
	v.SetDefault("dashboard.timezone", "local")
	v.SetDefault("dashboard.sort_chronological", false)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.keep", 5)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configFile, when given, on top of the defaults and the environment.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Settings) Validate() error {
	if s.Table.PageSize <= 0 {
		return fmt.Errorf("table.page_size must be positive, got %d", s.Table.PageSize)
	}
	if s.Training.ProgressInterval < 0 {
		return fmt.Errorf("training.progress_interval must not be negative")
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", s.Server.Port)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(s.Log.Level)); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", s.Log.Level, err)
	}
	return nil
}

// Location is the zone used for day buckets and for zone-less service timestamps.
func (s *Settings) Location() (*time.Location, error) {
	tz := strings.TrimSpace(s.Dashboard.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid dashboard.timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Endpoint resolves the service to talk to. A selected profile wins over base_url.
func (s *Settings) Endpoint(ctx context.Context) (domain.EndpointProfile, error) {
	if s.Service.Profile == "" {
		return domain.EndpointProfile{Name: "default", BaseURL: s.Service.BaseURL}, nil
	}

	registry, err := NewRegistry(s.Service.ProfilesPath)
	if err != nil {
		return domain.EndpointProfile{}, err
	}
	return registry.GetProfile(ctx, s.Service.Profile)
}

func (s *Settings) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

// Logger builds the process logger. Pretty output is meant for terminals only.
func (s LogSettings) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(s.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log.level %q: %w", s.Level, err)
	}
	if s.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func defaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultProfileFile
	}
	return filepath.Join(home, defaultProfileFile)
}
