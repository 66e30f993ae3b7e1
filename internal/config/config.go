package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the system-wide settings coordinator. Values resolve with
// precedence file > environment > defaults; environment keys carry the
// BADGERBOT_ prefix (e.g. BADGERBOT_GATEWAY_URL).
type Config struct {
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Producers ProducersConfig `mapstructure:"producers"`
	LogLevel  string          `mapstructure:"log_level"`
}

// GatewayConfig describes the connection to the chat platform's event feed.
type GatewayConfig struct {
	URL            string        `mapstructure:"url"`
	Token          string        `mapstructure:"token"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	ReconnectBase  time.Duration `mapstructure:"reconnect_base"`
	ReconnectLimit time.Duration `mapstructure:"reconnect_limit"`
	BufferSize     int           `mapstructure:"buffer_size"`
}

// DatabaseConfig describes the sqlite course catalog.
type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds the interaction lifecycle knobs. TTL bounds how long a
// paginated reply stays driveable; the cooldown window throttles repeated
// expensive fetches per user and action.
type SessionConfig struct {
	TTL            time.Duration `mapstructure:"ttl"`
	CooldownWindow time.Duration `mapstructure:"cooldown_window"`
}

// ProducersConfig carries the external data source endpoints and credentials.
type ProducersConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MadgradesURL  string        `mapstructure:"madgrades_url"`
	MadgradesKey  string        `mapstructure:"madgrades_key"`
	RateMyProfURL string        `mapstructure:"ratemyprof_url"`
	RateMyProfKey string        `mapstructure:"ratemyprof_key"`
	DiningURL     string        `mapstructure:"dining_url"`
	GymURL        string        `mapstructure:"gym_url"`
	GymKey        string        `mapstructure:"gym_key"`
	ClubsURL      string        `mapstructure:"clubs_url"`
	GuideURL      string        `mapstructure:"guide_url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("gateway.url", "ws://localhost:9000/feed")
	v.SetDefault("gateway.write_timeout", 10*time.Second)
	v.SetDefault("gateway.read_timeout", 60*time.Second)
	v.SetDefault("gateway.reconnect_base", time.Second)
	v.SetDefault("gateway.reconnect_limit", time.Minute)
	v.SetDefault("gateway.buffer_size", 100)

	v.SetDefault("database.path", "./badgerbot.db")
	v.SetDefault("database.timeout", 30*time.Second)

	v.SetDefault("session.ttl", 10*time.Minute)
	v.SetDefault("session.cooldown_window", 30*time.Second)

	v.SetDefault("producers.timeout", 10*time.Second)
	v.SetDefault("producers.madgrades_url", "https://api.madgrades.com/v1")
	v.SetDefault("producers.ratemyprof_url", "https://www.ratemyprofessors.com/graphql")
	v.SetDefault("producers.dining_url", "https://wisc-housingdining.nutrislice.com")
	v.SetDefault("producers.gym_url", "https://goboardapi.azurewebsites.net/api/FacilityCount")
	v.SetDefault("producers.clubs_url", "https://win.wisc.edu/api/discovery/search/organizations")
	v.SetDefault("producers.guide_url", "https://guide.wisc.edu")
}

// Load resolves configuration from defaults, environment and an optional
// config file path ("" skips the file layer).
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("badgerbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that would fail at runtime.
func (c *Config) Validate() error {
	if c.Gateway.URL == "" {
		return fmt.Errorf("gateway URL cannot be empty")
	}

	if c.Gateway.WriteTimeout <= 0 {
		return fmt.Errorf("gateway write timeout must be positive")
	}

	if c.Gateway.ReadTimeout <= 0 {
		return fmt.Errorf("gateway read timeout must be positive")
	}

	if c.Gateway.BufferSize <= 0 {
		return fmt.Errorf("gateway buffer size must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database timeout must be positive")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	if c.Session.CooldownWindow <= 0 {
		return fmt.Errorf("cooldown window must be positive")
	}

	if c.Producers.Timeout <= 0 {
		return fmt.Errorf("producer timeout must be positive")
	}

	return nil
}
