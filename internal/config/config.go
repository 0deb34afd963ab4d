// Package config handles the parsing and validation of application
// configuration from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/srcquery/querybot/internal/logger"
	"github.com/srcquery/querybot/internal/vars"
)

// AllCommunities marks a maintenance task as spanning every community.
const AllCommunities = "all"

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server    Server        `group:"Server Options" env-namespace:"QUERYBOT"`
	Storage   Storage       `group:"Storage Options" namespace:"db" env-namespace:"QUERYBOT_DB"`
	Query     Query         `group:"Query Options" namespace:"query" env-namespace:"QUERYBOT_QUERY"`
	GeoIP     GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"QUERYBOT_GEOIP"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"QUERYBOT_RATE_LIMIT"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"QUERYBOT_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Address     string   `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken   string   `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Admin authentication token"`
	Communities []string `short:"c" long:"community" env:"COMMUNITIES" description:"Allow-list of community IDs (empty allows all)" env-delim:","`
	MaxBodySize int64    `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"4096"`
	TrustProxy  bool     `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Storage holds database configuration and one-shot maintenance flags.
type Storage struct {
	// betteralign:ignore

	Path             string `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"querybot.db"`
	Audit            string `long:"audit" description:"Query every registered server and log reachability. Optional arg: community ID." optional:"true" optional-value:"all"`
	PruneUnreachable string `long:"prune-unreachable" description:"Delete entries whose servers do not answer. Optional arg: community ID." optional:"true" optional-value:"all"`
	GenerateCount    int    `long:"gen-fake-data" hidden:"true"`
}

// Query holds Source Query protocol configuration.
type Query struct {
	// betteralign:ignore

	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query and DNS timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// GeoIP holds MaxMind GeoIP configuration. Country annotation is disabled
// when Path is empty.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file (empty disables country lookup)"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: requests count" default:"8"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the
// help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	if cfg.Server.AuthToken == "" {
		fmt.Fprintln(os.Stderr,
			"Required flag `-t, --auth-token' or environment variable `QUERYBOT_AUTH_TOKEN` was not specified!")
		os.Exit(1)
	}

	return &cfg
}
