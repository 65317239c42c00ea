package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultUserAgent is the desktop Chrome string sent by the renderers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config is the root configuration for WedScrape.
type Config struct {
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Debug   DebugConfig   `mapstructure:"debug"   yaml:"debug"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// BrowserConfig controls how pages are rendered. Every flag is set once per run.
type BrowserConfig struct {
	Mode            string        `mapstructure:"mode"             yaml:"mode"` // browser, http
	Headless        bool          `mapstructure:"headless"         yaml:"headless"`
	WindowWidth     int           `mapstructure:"window_width"     yaml:"window_width"`
	WindowHeight    int           `mapstructure:"window_height"    yaml:"window_height"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	NoSandbox       bool          `mapstructure:"no_sandbox"       yaml:"no_sandbox"`
	DisableGPU      bool          `mapstructure:"disable_gpu"      yaml:"disable_gpu"`
	Stealth         bool          `mapstructure:"stealth"          yaml:"stealth"`
	Wait            time.Duration `mapstructure:"wait"             yaml:"wait"` // 0 uses the category default
	ReadySelector   string        `mapstructure:"ready_selector"   yaml:"ready_selector"`
	FixedWait       bool          `mapstructure:"fixed_wait"       yaml:"fixed_wait"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout" yaml:"navigate_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	Bin             string        `mapstructure:"bin"              yaml:"bin"`
}

// ScrapeConfig selects the category schema and the input URLs.
type ScrapeConfig struct {
	Category   string   `mapstructure:"category"    yaml:"category"`
	URLs       []string `mapstructure:"urls"        yaml:"urls"`
	URLsFile   string   `mapstructure:"urls_file"   yaml:"urls_file"`
	UniqueURLs bool     `mapstructure:"unique_urls" yaml:"unique_urls"`
}

// StorageConfig controls output/storage.
type StorageConfig struct {
	Type            string   `mapstructure:"type"             yaml:"type"`
	OutputPath      string   `mapstructure:"output_path"      yaml:"output_path"`
	Also            []string `mapstructure:"also"             yaml:"also"`
	MongoURI        string   `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string   `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string   `mapstructure:"mongo_collection" yaml:"mongo_collection"`
	RedisAddr       string   `mapstructure:"redis_addr"       yaml:"redis_addr"`
	RedisDB         int      `mapstructure:"redis_db"         yaml:"redis_db"`
	RedisStream     string   `mapstructure:"redis_stream"     yaml:"redis_stream"`
}

// DebugConfig controls the raw-document debug artifact.
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir"     yaml:"dir"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Mode:            "browser",
			Headless:        true,
			WindowWidth:     1920,
			WindowHeight:    1080,
			UserAgent:       DefaultUserAgent,
			NoSandbox:       true,
			DisableGPU:      true,
			NavigateTimeout: 60 * time.Second,
			MaxBodySize:     20 * 1024 * 1024, // 20MB
		},
		Storage: StorageConfig{
			Type:            "json",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "wedscrape",
			MongoCollection: "vendors",
			RedisAddr:       "localhost:6379",
			RedisStream:     "wedscrape:vendors",
		},
		Debug: DebugConfig{
			Enabled: false,
			Dir:     "debug_html",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
