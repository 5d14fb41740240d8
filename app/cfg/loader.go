package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Discord configuration
	DiscordToken string `long:"discord-token" env:"DISCORD_TOKEN" description:"Discord bot token (required)" required:"true"`

	// Database configuration
	DatabasePath string `long:"database-path" env:"DATABASE_PATH" default:"./data/fleetwatch.db" description:"Path to the SQLite database file"`

	// Polling configuration
	DefaultPollingSec int `long:"default-polling-sec" env:"DEFAULT_POLLING_SEC" default:"120" description:"Default polling interval in seconds (30-120)"`
	HTTPTimeoutMs     int `long:"http-timeout-ms" env:"HTTP_TIMEOUT_MS" default:"10000" description:"Feed fetch timeout in milliseconds (1000-30000)"`

	// Application configuration
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for health and metrics endpoints"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Fleetwatch/1.0" description:"User agent string for feed requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DiscordToken:      raw.DiscordToken,
		DatabasePath:      raw.DatabasePath,
		DefaultPollingSec: clampInt(raw.DefaultPollingSec, 30, 120),
		HTTPTimeoutMs:     clampInt(raw.HTTPTimeoutMs, 1000, 30000),
		Port:              raw.Port,
		UserAgent:         raw.UserAgent,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
