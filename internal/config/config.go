package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// EnvPrefix prefixes every environment variable, e.g. FRAUD_TRAIL_DIR.
	EnvPrefix = "FRAUD_TRAIL"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultArtifactTTL   = 24 * time.Hour
	DefaultSweepInterval = time.Hour
	DefaultOutputSubdir  = "fraud-trail-output"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by LoadFromArgs when the version flag is
// present.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the fraud trail MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Report configuration
	ReportDirectory string
	OutputDirectory string
	IconsFile       string // JSON object of bank name to icon URL; optional
	ArtifactTTL     time.Duration
	SweepInterval   time.Duration

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		ReportDirectory: currentDir,
		OutputDirectory: filepath.Join(os.TempDir(), DefaultOutputSubdir),
		ArtifactTTL:     DefaultArtifactTTL,
		SweepInterval:   DefaultSweepInterval,
		Version:         "1.0.0",
		ServerName:      "mcp-fraud-trail",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return LoadFromArgs(os.Args[0], os.Args[1:])
}

// LoadFromArgs builds a configuration from defaults, FRAUD_TRAIL_*
// environment variables and args, in increasing order of precedence.
func LoadFromArgs(program string, args []string) (*Config, error) {
	cfg := DefaultConfig()

	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return nil, ErrVersionRequested
		}
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)

	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)
	defineCommandLineFlags(flags, cfg)
	flags.Usage = usage(program, flags)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	populateConfigFromViper(v, cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.ReportDirectory, &cfg.OutputDirectory} {
		if *p == "" {
			continue
		}
		if expandedPath, err := filepath.Abs(*p); err == nil {
			*p = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.ReportDirectory)
	v.SetDefault("outdir", cfg.OutputDirectory)
	v.SetDefault("icons", cfg.IconsFile)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("artifactttl", cfg.ArtifactTTL)
	v.SetDefault("sweepinterval", cfg.SweepInterval)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP (SSE) server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.ReportDirectory, "Directory containing report PDF files")
	flags.String("outdir", cfg.OutputDirectory, "Directory receiving workbook and JSON artifacts")
	flags.String("icons", cfg.IconsFile, "JSON file mapping bank names to icon URLs")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Duration("artifactttl", cfg.ArtifactTTL, "How long artifacts are kept before they are swept")
	flags.Duration("sweepinterval", cfg.SweepInterval, "How often expired artifacts are swept")
}

// usage returns the custom usage message
func usage(program string, flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", program)
		fmt.Fprintf(os.Stderr, "\nMCP Fraud Trail - turns fraud complaint report PDFs into records and money-trail graphs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", program)
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/reports --icons=banks.json    "+
			"# stdio mode with bank icons\n", program)
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/srv/reports         # server mode\n", program)
		fmt.Fprintf(os.Stderr, "  %s --mode=server --artifactttl=2h           # keep artifacts for two hours\n", program)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE           Server mode\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_HOST           Server host\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PORT           Server port\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_DIR            Report directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_OUTDIR         Artifact directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_ICONS          Bank icon table\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOGLEVEL       Log level\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MAXFILESIZE    Maximum file size\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_ARTIFACTTTL    Artifact retention\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_SWEEPINTERVAL  Artifact sweep interval\n", EnvPrefix)
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.ReportDirectory = v.GetString("dir")
	cfg.OutputDirectory = v.GetString("outdir")
	cfg.IconsFile = v.GetString("icons")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.ArtifactTTL = v.GetDuration("artifactttl")
	cfg.SweepInterval = v.GetDuration("sweepinterval")
}

// Validate checks if the configuration is valid. Missing report and output
// directories are created.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.ReportDirectory == "" {
		return errors.New("report directory cannot be empty")
	}
	if err := ensureDirectory("report", c.ReportDirectory); err != nil {
		return err
	}

	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}
	if err := ensureDirectory("output", c.OutputDirectory); err != nil {
		return err
	}

	if c.IconsFile != "" {
		info, err := os.Stat(c.IconsFile)
		if err != nil {
			return fmt.Errorf("cannot access icons file %s: %w", c.IconsFile, err)
		}
		if info.IsDir() {
			return fmt.Errorf("icons file %s is a directory", c.IconsFile)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.ArtifactTTL <= 0 {
		return errors.New("artifact TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

func ensureDirectory(kind, dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create %s directory %s: %w", kind, dir, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access %s directory %s: %w", kind, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s directory %s is not a directory", kind, dir)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, ReportDirectory: %s, OutputDirectory: %s, "+
		"IconsFile: %s, LogLevel: %s, MaxFileSize: %d, ArtifactTTL: %s}",
		c.Mode, c.Host, c.Port, c.ReportDirectory, c.OutputDirectory,
		c.IconsFile, c.LogLevel, c.MaxFileSize, c.ArtifactTTL)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
