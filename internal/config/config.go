package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// MLB Stats API
	StatsAPIBaseURL string        `envconfig:"STATSAPI_BASE_URL" default:"https://statsapi.mlb.com/api/v1"`
	StatsAPITimeout time.Duration `envconfig:"STATSAPI_TIMEOUT" default:"5s"`

	// Roster pages
	RosterTimeout      time.Duration `envconfig:"ROSTER_TIMEOUT" default:"15s"`
	RosterRequestDelay time.Duration `envconfig:"ROSTER_REQUEST_DELAY" default:"300ms"`
	RosterRetries      int           `envconfig:"ROSTER_RETRIES" default:"2"`

	// Savant leaderboards
	SavantTimeout    time.Duration `envconfig:"SAVANT_TIMEOUT" default:"20s"`
	PitchMixURL      string        `envconfig:"SAVANT_PITCH_MIX_URL" default:"https://baseballsavant.mlb.com/leaderboard/custom?year=2025%2C2024%2C2023&type=pitcher&filter=&min=50&selections=pitch_count%2Cn_ff_formatted%2Cn_sl_formatted%2Cn_ch_formatted%2Cn_cu_formatted%2Cn_si_formatted%2Cn_fc_formatted%2Cn_fs_formatted%2Cn_kn_formatted%2Cn_st_formatted%2Cn_sv_formatted%2Cn_fo_formatted&chart=false&r=no&sort=player_name&sortDir=asc"`
	VelocitiesURL    string        `envconfig:"SAVANT_VELOCITIES_URL" default:"https://baseballsavant.mlb.com/leaderboard/custom?year=2025%2C2024%2C2023&type=pitcher&filter=&min=50&selections=pitch_count%2Cff_avg_speed%2Csl_avg_speed%2Cch_avg_speed%2Ccu_avg_speed%2Csi_avg_speed%2Cfc_avg_speed%2Cfs_avg_speed%2Ckn_avg_speed%2Cst_avg_speed%2Csv_avg_speed%2Cfo_avg_speed&chart=false&r=no&sort=player_name&sortDir=asc"`
	PitchMixOutput   string        `envconfig:"PITCH_MIX_OUTPUT" default:"data/pitch_mix.csv"`
	VelocitiesOutput string        `envconfig:"VELOCITIES_OUTPUT" default:"data/pitch_velos.csv"`

	// Join
	Providers          []string `envconfig:"PROVIDERS" default:"api,static,roster"`
	DefaultTeam        string   `envconfig:"DEFAULT_TEAM" default:"Free Agent"`
	OfflineDefaultTeam string   `envconfig:"OFFLINE_DEFAULT_TEAM" default:"Unknown"`
	StaticTablePath    string   `envconfig:"STATIC_TABLE_PATH" default:""`
	SnapshotPath       string   `envconfig:"ROSTER_SNAPSHOT_PATH" default:"data/team_rosters.json"`
	JoinedTablePath    string   `envconfig:"JOINED_TABLE_PATH" default:""`
	JoinWorkers        int      `envconfig:"JOIN_WORKERS" default:"1"`
	NameMatchThreshold float64  `envconfig:"NAME_MATCH_THRESHOLD" default:"0"`

	// Database (optional)
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	// Redis (optional)
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	WeeklyUpdateCron   string `envconfig:"WEEKLY_UPDATE_CRON" default:"0 6 * * 1"`

	// Caching TTL (in seconds)
	CacheTTLTeams int `envconfig:"CACHE_TTL_TEAMS" default:"86400"` // 24 hours

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

var knownProviders = map[string]bool{
	"api":    true,
	"static": true,
	"roster": true,
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultTeam) == "" {
		return fmt.Errorf("DEFAULT_TEAM must not be empty")
	}

	if strings.TrimSpace(c.OfflineDefaultTeam) == "" {
		return fmt.Errorf("OFFLINE_DEFAULT_TEAM must not be empty")
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, name := range c.Providers {
		name = strings.ToLower(strings.TrimSpace(name))
		if !knownProviders[name] {
			return fmt.Errorf("unknown provider %q in PROVIDERS", name)
		}
		if seen[name] {
			return fmt.Errorf("provider %q listed twice in PROVIDERS", name)
		}
		seen[name] = true
	}

	if c.JoinWorkers < 1 {
		return fmt.Errorf("JOIN_WORKERS must be at least 1")
	}

	if c.NameMatchThreshold < 0 || c.NameMatchThreshold > 1 {
		return fmt.Errorf("NAME_MATCH_THRESHOLD must be between 0 and 1")
	}

	if c.StatsAPITimeout <= 0 {
		return fmt.Errorf("STATSAPI_TIMEOUT must be positive")
	}

	if c.RosterRetries < 0 {
		return fmt.Errorf("ROSTER_RETRIES must not be negative")
	}

	return nil
}

// ProviderNames returns the normalized provider priority list
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for _, name := range c.Providers {
		names = append(names, strings.ToLower(strings.TrimSpace(name)))
	}
	return names
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// CacheTTL returns the team cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLTeams) * time.Second
}

// HasDatabase reports whether PostgreSQL persistence is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
