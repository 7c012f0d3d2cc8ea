package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

var (
	errInvalidPort        = errors.New("config: invalid PORT number")
	errCrawlCapOutOfRange = errors.New("config: CRAWL_MAX_LINKS must be 0-20")
	errTimeoutTooSmall    = errors.New("config: timeouts must be at least 1s")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Browser session.
	UserAgent      string `mapstructure:"BROWSER_USER_AGENT"`
	ViewportWidth  int    `mapstructure:"BROWSER_VIEWPORT_WIDTH"`
	ViewportHeight int    `mapstructure:"BROWSER_VIEWPORT_HEIGHT"`

	// Primary analysis timeouts, in seconds.
	PageCreateTimeoutSec int `mapstructure:"PAGE_CREATE_TIMEOUT_SEC"`
	NavigationTimeoutSec int `mapstructure:"NAVIGATION_TIMEOUT_SEC"`
	SettleDelaySec       int `mapstructure:"SETTLE_DELAY_SEC"`

	// Internal crawl pass.
	CrawlMaxLinks             int `mapstructure:"CRAWL_MAX_LINKS"`
	CrawlPageCreateTimeoutSec int `mapstructure:"CRAWL_PAGE_CREATE_TIMEOUT_SEC"`
	CrawlNavigationTimeoutSec int `mapstructure:"CRAWL_NAVIGATION_TIMEOUT_SEC"`
	CrawlSettleDelaySec       int `mapstructure:"CRAWL_SETTLE_DELAY_SEC"`
	CrawlPacePerSecond        int `mapstructure:"CRAWL_PACE_PER_SECOND"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetDefault("BROWSER_USER_AGENT",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("BROWSER_VIEWPORT_WIDTH", 1920)
	viper.SetDefault("BROWSER_VIEWPORT_HEIGHT", 1080)

	viper.SetDefault("PAGE_CREATE_TIMEOUT_SEC", 30)
	viper.SetDefault("NAVIGATION_TIMEOUT_SEC", 120)
	viper.SetDefault("SETTLE_DELAY_SEC", 5)

	viper.SetDefault("CRAWL_MAX_LINKS", 5)
	viper.SetDefault("CRAWL_PAGE_CREATE_TIMEOUT_SEC", 20)
	viper.SetDefault("CRAWL_NAVIGATION_TIMEOUT_SEC", 60)
	viper.SetDefault("CRAWL_SETTLE_DELAY_SEC", 2)
	viper.SetDefault("CRAWL_PACE_PER_SECOND", 1)

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.CrawlMaxLinks < 0 || c.CrawlMaxLinks > 20 {
		return fmt.Errorf("%w: got %d", errCrawlCapOutOfRange, c.CrawlMaxLinks)
	}

	for _, sec := range []int{c.PageCreateTimeoutSec, c.NavigationTimeoutSec, c.CrawlPageCreateTimeoutSec, c.CrawlNavigationTimeoutSec} {
		if sec < 1 {
			return fmt.Errorf("%w: got %ds", errTimeoutTooSmall, sec)
		}
	}

	return nil
}

// PageCreateTimeout returns the page-context acquisition deadline.
func (c Config) PageCreateTimeout() time.Duration {
	return time.Duration(c.PageCreateTimeoutSec) * time.Second
}

// NavigationTimeout returns the primary navigation deadline.
func (c Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSec) * time.Second
}

// SettleDelay returns the fixed post-load wait before snapshotting.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySec) * time.Second
}
