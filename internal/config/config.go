// Package config loads and validates the pipeline configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full pipeline configuration.
type Config struct {
	Targets []string      `mapstructure:"targets"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Output  OutputConfig  `mapstructure:"output"`
	Git     GitConfig     `mapstructure:"git"`
	Log     LogConfig     `mapstructure:"log"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Sinks   SinksConfig   `mapstructure:"sinks"`
}

// HTTPConfig controls outbound requests.
type HTTPConfig struct {
	TimeoutMS     int    `mapstructure:"timeout_ms"`
	DebugDump     bool   `mapstructure:"debug_dump"`
	DebugDumpPath string `mapstructure:"debug_dump_path"`
}

// CrawlConfig controls pacing and the generic extraction heuristics.
// The title length bounds and delay range are tunable heuristics, not
// fixed protocol values.
type CrawlConfig struct {
	DelayMinMS    int `mapstructure:"delay_min_ms"`
	DelayMaxMS    int `mapstructure:"delay_max_ms"`
	MinTitleRunes int `mapstructure:"min_title_runes"`
	MaxTitleRunes int `mapstructure:"max_title_runes"`
}

// OutputConfig controls where the rendered digest lands.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
	CSV bool   `mapstructure:"csv"`
}

// GitConfig controls the commit-and-push step.
type GitConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Dir             string `mapstructure:"dir"`
	Remote          string `mapstructure:"remote"`
	Branch          string `mapstructure:"branch"`
	AuthorName      string `mapstructure:"author_name"`
	AuthorEmail     string `mapstructure:"author_email"`
	MessageTemplate string `mapstructure:"message_template"`
}

// LogConfig controls the console/file logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ArchiveConfig controls the bbolt crawl archive.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// SinksConfig points at the notification sinks file.
type SinksConfig struct {
	File string `mapstructure:"file"`
}

// Load reads the YAML config at path, applying defaults for anything
// not set. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("targets", []string{
		"https://news.sina.com.cn/",
		"https://news.163.com/",
	})
	v.SetDefault("http.timeout_ms", 10000)
	v.SetDefault("http.debug_dump", false)
	v.SetDefault("http.debug_dump_path", "debug_html.html")
	v.SetDefault("crawl.delay_min_ms", 3000)
	v.SetDefault("crawl.delay_max_ms", 8000)
	v.SetDefault("crawl.min_title_runes", 10)
	v.SetDefault("crawl.max_title_runes", 100)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.csv", false)
	v.SetDefault("git.enabled", true)
	v.SetDefault("git.dir", ".")
	v.SetDefault("git.remote", "origin")
	v.SetDefault("git.branch", "main")
	v.SetDefault("git.author_name", "news-bot")
	v.SetDefault("git.author_email", "news-bot@users.noreply.github.com")
	v.SetDefault("git.message_template", "更新每日新闻摘要 %s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/yaowen.log")
	v.SetDefault("archive.path", "")
	v.SetDefault("sinks.file", "")
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return errors.New("config: at least one target is required")
	}
	for i, t := range c.Targets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("config: targets[%d] is empty", i)
		}
	}
	if c.HTTP.TimeoutMS <= 0 {
		return errors.New("config: http.timeout_ms must be positive")
	}
	if c.Crawl.DelayMinMS < 0 || c.Crawl.DelayMaxMS < c.Crawl.DelayMinMS {
		return errors.New("config: crawl delay range is invalid")
	}
	if c.Crawl.MinTitleRunes < 0 || c.Crawl.MaxTitleRunes <= c.Crawl.MinTitleRunes {
		return errors.New("config: crawl title rune bounds are invalid")
	}
	if c.Git.Enabled {
		if c.Git.Remote == "" || c.Git.Branch == "" {
			return errors.New("config: git remote and branch are required when git is enabled")
		}
		if !strings.Contains(c.Git.MessageTemplate, "%s") {
			return errors.New("config: git.message_template must contain %s for the date")
		}
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMS) * time.Millisecond
}

// DelayRange returns the inter-request delay bounds.
func (c *Config) DelayRange() (time.Duration, time.Duration) {
	return time.Duration(c.Crawl.DelayMinMS) * time.Millisecond,
		time.Duration(c.Crawl.DelayMaxMS) * time.Millisecond
}
