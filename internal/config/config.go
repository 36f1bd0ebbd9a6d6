// Package config parses the command line and environment into a Config.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

// Config holds the resolved runtime settings.
type Config struct {
	Bind     string
	Port     uint16
	Database string
	LogLevel string

	GRPCPort uint16

	RejectReserved bool
	VerifyDatabase bool
	ProxyProtocol  bool
	CORSOrigins    []string

	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(int(c.Port)))
}

// GRPCAddr returns the gRPC listen address, or an empty string when gRPC is
// disabled.
func (c Config) GRPCAddr() string {
	if c.GRPCPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Bind, strconv.Itoa(int(c.GRPCPort)))
}

// SlogLevel converts LogLevel to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewApp builds the kingpin application and binds its flags to cfg.
func NewApp(name, version string, cfg *Config) *kingpin.Application {
	app := kingpin.New(name, "Serves GeoIP2 city and country lookups from a MaxMind DB file.")
	app.Version(version)
	app.HelpFlag.Short('h')

	app.Flag("bind", "Address to listen on.").
		Short('b').
		Envar("BIND").
		Default("0.0.0.0").
		StringVar(&cfg.Bind)
	app.Flag("port", "HTTP port to listen on.").
		Short('p').
		Envar("PORT").
		Default("3000").
		Uint16Var(&cfg.Port)
	app.Flag("database", "Path to the MaxMind DB file.").
		Short('d').
		Envar("DB").
		Required().
		StringVar(&cfg.Database)
	app.Flag("log-level", "Log level.").
		Envar("LOG_LEVEL").
		Default("info").
		EnumVar(&cfg.LogLevel, "debug", "info", "warn", "error")
	app.Flag("grpc-port", "gRPC port to listen on, 0 disables gRPC.").
		Envar("GRPC_PORT").
		Default("0").
		Uint16Var(&cfg.GRPCPort)
	app.Flag("reject-reserved", "Answer lookups of private and reserved addresses with IP_ADDRESS_RESERVED.").
		Envar("REJECT_RESERVED").
		BoolVar(&cfg.RejectReserved)
	app.Flag("verify-database", "Verify the whole database at startup.").
		Envar("VERIFY_DATABASE").
		BoolVar(&cfg.VerifyDatabase)
	app.Flag("proxy-protocol", "Accept PROXY protocol headers.").
		Envar("PROXY_PROTOCOL").
		BoolVar(&cfg.ProxyProtocol)
	app.Flag("cors-origins", "Comma-separated list of origins allowed by CORS.").
		Envar("CORS_ORIGINS").
		Default("").
		SetValue(commaList{&cfg.CORSOrigins})
	app.Flag("shutdown-timeout", "Time to wait for in-flight requests on shutdown.").
		Envar("SHUTDOWN_TIMEOUT").
		Default("30s").
		DurationVar(&cfg.ShutdownTimeout)
	app.Flag("read-header-timeout", "Time allowed to read request headers.").
		Envar("READ_HEADER_TIMEOUT").
		Default("10s").
		DurationVar(&cfg.ReadHeaderTimeout)

	return app
}

// ErrExit is returned by Parse after --help or --version has been handled.
// The caller should exit successfully without starting the service.
var ErrExit = errors.New("exit requested")

// Parse parses args (without the program name) and the environment.
func Parse(name, version string, args []string) (Config, error) {
	cfg := Config{}
	app := NewApp(name, version, &cfg)

	terminated := false
	app.Terminate(func(int) { terminated = true })

	_, err := app.Parse(args)
	if terminated {
		return Config{}, ErrExit
	}
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		return fmt.Errorf("grpc port %d collides with http port", c.GRPCPort)
	}
	if c.ShutdownTimeout < 0 || c.ReadHeaderTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// commaList is a kingpin.Value splitting a comma-separated string.
type commaList struct {
	target *[]string
}

func (l commaList) Set(value string) error {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*l.target = items
	return nil
}

func (l commaList) String() string {
	return strings.Join(*l.target, ",")
}
