package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/registry"
)

// EnvPrefix prefixes every environment variable the shim reads.
const EnvPrefix = "MOKAPOT"

const (
	defaultLogLevel  = "warn"
	defaultLogFormat = FormatAuto
)

// Log encodings.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	homeHelp = "GraalVM install root. Derived from the shim library's " +
		"location when empty."
	logLevelHelp  = "Log level (debug, info, warn, error)."
	logFormatHelp = "Log encoding: console, json, or auto (console on a terminal)."
	reservedHelp  = "Address space reserved per isolate, e.g. 32g. Empty uses " +
		"the guest default."
	capacityHelp = "Slots in the first registry segment."
)

// Config is the shim configuration.
type Config struct {
	Home             string
	LogLevel         string
	LogFormat        string
	ReservedSpace    string
	RegistryCapacity int

	reserved int64
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         defaultLogLevel,
		LogFormat:        defaultLogFormat,
		RegistryCapacity: registry.DefaultCapacity,
	}
}

// RegisterFlags binds c to fs, together with the -config file flag.
// Callers may add their own flags to fs before parsing.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.String("config", "", "Plain config file (one \"flag value\" per line).")
	fs.StringVar(&c.Home, "home", c.Home, homeHelp)
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, logLevelHelp)
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, logFormatHelp)
	fs.StringVar(&c.ReservedSpace, "isolate-reserved-space", c.ReservedSpace, reservedHelp)
	fs.IntVar(&c.RegistryCapacity, "registry-capacity", c.RegistryCapacity, capacityHelp)
}

// Parse parses args, the environment and the config file into fs.
func Parse(fs *flag.FlagSet, args []string) error {
	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithIgnoreUndefined(true),
		ff.WithAllowMissingConfigFile(true),
	)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse settings")
	}
	return nil
}

// Load builds a validated Config from args and the environment.
func Load(args []string) (*Config, error) {
	c := New()
	fs := flag.NewFlagSet("mokapot", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := Parse(fs, args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks c and resolves derived values.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case FormatAuto, FormatConsole, FormatJSON:
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log format %q", c.LogFormat))
	}
	if c.RegistryCapacity < 1 {
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("registry capacity %d", c.RegistryCapacity))
	}

	c.reserved = 0
	if c.ReservedSpace != "" {
		n, err := units.RAMInBytes(c.ReservedSpace)
		if err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
				"isolate reserved space")
		}
		if n < 0 {
			return errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("isolate reserved space %q", c.ReservedSpace))
		}
		c.reserved = n
	}
	return nil
}

// ReservedBytes is the parsed isolate reservation; 0 means guest default.
func (c *Config) ReservedBytes() int64 {
	return c.reserved
}

// IsolateParams returns the parameters for new isolates.
func (c *Config) IsolateParams() guest.IsolateParams {
	return guest.IsolateParams{ReservedAddressSpace: c.reserved}
}

// RegistryOptions returns the options for a registry sized by c.
func (c *Config) RegistryOptions() []registry.Option {
	return []registry.Option{registry.WithInitialCapacity(c.RegistryCapacity)}
}

// Encoding resolves FormatAuto against stderr.
func (c *Config) Encoding() string {
	if c.LogFormat != FormatAuto {
		return c.LogFormat
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return FormatConsole
	}
	return FormatJSON
}

// Logger builds a logger writing to stderr.
func (c *Config) Logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log level %q", c.LogLevel))
	}

	enc := c.Encoding()
	zc := zap.NewProductionConfig()
	if enc == FormatConsole {
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = enc
	zc.Sampling = nil
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
