package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/contactform/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "contactform.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultLivePath is the URL path of the live WebSocket channel.
	DefaultLivePath = "/live"

	// DefaultCookieName is the name of the session cookie.
	DefaultCookieName = "contactform_session"
)

// Environment variables that override the file.
const (
	EnvPort     = "CONTACTFORM_PORT"
	EnvHost     = "CONTACTFORM_HOST"
	EnvLogLevel = "CONTACTFORM_LOG_LEVEL"
)

// Config represents the complete contactform.json configuration.
type Config struct {
	// Name is the application name, used as the page title suffix and the
	// tracer name.
	Name string `json:"name,omitempty"`

	// Port is the server port.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Dev enables development mode: debug logging and no origin check on
	// the live channel.
	Dev bool `json:"dev,omitempty"`

	// Server contains HTTP server timeouts.
	Server ServerConfig `json:"server,omitempty"`

	// Live contains live channel settings.
	Live LiveConfig `json:"live,omitempty"`

	// Session contains session resume settings.
	Session SessionConfig `json:"session,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server timeouts as duration strings.
type ServerConfig struct {
	ReadTimeout       string `json:"readTimeout,omitempty"`
	ReadHeaderTimeout string `json:"readHeaderTimeout,omitempty"`
	WriteTimeout      string `json:"writeTimeout,omitempty"`
	IdleTimeout       string `json:"idleTimeout,omitempty"`
	ShutdownTimeout   string `json:"shutdownTimeout,omitempty"`
}

// LiveConfig contains live channel settings.
type LiveConfig struct {
	// Path is the WebSocket endpoint (default: "/live").
	Path string `json:"path,omitempty"`

	// PingInterval is how often the server pings the client (e.g., "30s").
	PingInterval string `json:"pingInterval,omitempty"`

	// MaxMessageSize is the largest accepted client message in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// AllowedOrigins lists extra origins allowed to open the live channel.
	// Same-origin requests are always allowed.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// SessionConfig contains session configuration.
type SessionConfig struct {
	// ResumeWindow is how long a disconnected form can be resumed (e.g., "5m").
	ResumeWindow string `json:"resumeWindow,omitempty"`

	// CookieName is the session cookie name.
	CookieName string `json:"cookieName,omitempty"`

	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool `json:"cookieSecure,omitempty"`

	// CleanupInterval is how often expired sessions are removed.
	CleanupInterval string `json:"cleanupInterval,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`

	// Buckets overrides the request duration histogram buckets, in seconds.
	Buckets []float64 `json:"buckets,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "contactform",
		Port: DefaultPort,
		Host: DefaultHost,
		Server: ServerConfig{
			ReadTimeout:       "30s",
			ReadHeaderTimeout: "5s",
			WriteTimeout:      "30s",
			IdleTimeout:       "60s",
			ShutdownTimeout:   "10s",
		},
		Live: LiveConfig{
			Path:           DefaultLivePath,
			PingInterval:   "30s",
			MaxMessageSize: 4096,
		},
		Session: SessionConfig{
			ResumeWindow:    "5m",
			CookieName:      DefaultCookieName,
			CleanupInterval: "1m",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "contactform",
		},
		Tracing: TracingConfig{
			Enabled:    true,
			TracerName: "contactform",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// A directory without contactform.json yields the defaults.
// Environment overrides are applied in both cases.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	cfg, err := LoadFile(configPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		cfg = New()
		cfg.applyEnv(os.LookupEnv)
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("CF030").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, parseError(path, data, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv(os.LookupEnv)

	return cfg, nil
}

// parseError locates a JSON decoding error in the file.
func parseError(path string, data []byte, err error) error {
	e := errors.New("CF031").Wrap(err)

	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
		e.WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
		e.WithSuggestion(fmt.Sprintf("%q must be a %s", typeErr.Field, typeErr.Type))
	}
	if offset >= 0 {
		line, col := lineCol(data, offset)
		// Context comes from the bytes that were decoded, not a second read.
		e.WithLocation(path, line, col).WithContext(contextLines(data, line, 2))
	}
	return e
}

// contextLines returns up to radius lines either side of the 1-based line.
func contextLines(data []byte, line, radius int) []string {
	lines := strings.Split(string(data), "\n")
	start := max(line-1-radius, 0)
	end := min(line+radius, len(lines))
	if start >= end {
		return nil
	}
	return lines[start:end]
}

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("CF030").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("CF030").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Host == "" {
		c.Host = d.Host
	}

	// Server
	setDefault(&c.Server.ReadTimeout, d.Server.ReadTimeout)
	setDefault(&c.Server.ReadHeaderTimeout, d.Server.ReadHeaderTimeout)
	setDefault(&c.Server.WriteTimeout, d.Server.WriteTimeout)
	setDefault(&c.Server.IdleTimeout, d.Server.IdleTimeout)
	setDefault(&c.Server.ShutdownTimeout, d.Server.ShutdownTimeout)

	// Live
	setDefault(&c.Live.Path, d.Live.Path)
	setDefault(&c.Live.PingInterval, d.Live.PingInterval)
	if c.Live.MaxMessageSize == 0 {
		c.Live.MaxMessageSize = d.Live.MaxMessageSize
	}

	// Session
	setDefault(&c.Session.ResumeWindow, d.Session.ResumeWindow)
	setDefault(&c.Session.CookieName, d.Session.CookieName)
	setDefault(&c.Session.CleanupInterval, d.Session.CleanupInterval)

	// Observability
	setDefault(&c.Metrics.Path, d.Metrics.Path)
	setDefault(&c.Metrics.Namespace, d.Metrics.Namespace)
	setDefault(&c.Tracing.TracerName, d.Tracing.TracerName)
	setDefault(&c.Log.Level, d.Log.Level)
	setDefault(&c.Log.Format, d.Log.Format)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// applyEnv applies environment overrides. Malformed values are ignored
// here and left for Validate to report through the file values.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvPort); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Port = port
		}
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Host = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("CF032").
			WithDetail(fmt.Sprintf("Port must be between 1 and 65535, got %d", c.Port))
	}

	durations := []struct{ name, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.readHeaderTimeout", c.Server.ReadHeaderTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.idleTimeout", c.Server.IdleTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"live.pingInterval", c.Live.PingInterval},
		{"session.resumeWindow", c.Session.ResumeWindow},
		{"session.cleanupInterval", c.Session.CleanupInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return errors.New("CF033").
				WithDetail(fmt.Sprintf("%s: %q is not a duration", d.name, d.value)).
				Wrap(err)
		}
		if v <= 0 {
			return errors.New("CF033").
				WithDetail(fmt.Sprintf("%s must be positive, got %s", d.name, d.value))
		}
	}

	if !strings.HasPrefix(c.Live.Path, "/") {
		return errors.New("CF034").
			WithDetail(fmt.Sprintf("live.path must start with /, got %q", c.Live.Path))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("CF034").
			WithDetail(fmt.Sprintf("metrics.path must start with /, got %q", c.Metrics.Path))
	}
	for i := 1; i < len(c.Metrics.Buckets); i++ {
		if c.Metrics.Buckets[i] <= c.Metrics.Buckets[i-1] {
			return errors.New("CF034").
				WithDetail(fmt.Sprintf("metrics.buckets must be strictly increasing, got %v", c.Metrics.Buckets))
		}
	}
	if c.Live.MaxMessageSize < 64 {
		return errors.New("CF034").
			WithDetail(fmt.Sprintf("live.maxMessageSize must be at least 64, got %d", c.Live.MaxMessageSize))
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("CF034").
			WithDetail(fmt.Sprintf(`log.format must be "text" or "json", got %q`, c.Log.Format))
	}
	return nil
}

// Address returns the host:port address to listen on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// LogLevel parses the configured log level. Dev mode forces debug.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Dev {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("CF034").
			WithDetail(fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level)).
			Wrap(err)
	}
	return level, nil
}

// ReadTimeout returns server.readTimeout. It is zero if the value does
// not parse; call Validate first.
func (c *Config) ReadTimeout() time.Duration { return mustDuration(c.Server.ReadTimeout) }

// ReadHeaderTimeout returns server.readHeaderTimeout.
func (c *Config) ReadHeaderTimeout() time.Duration {
	return mustDuration(c.Server.ReadHeaderTimeout)
}

// WriteTimeout returns server.writeTimeout.
func (c *Config) WriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }

// IdleTimeout returns server.idleTimeout.
func (c *Config) IdleTimeout() time.Duration { return mustDuration(c.Server.IdleTimeout) }

// ShutdownTimeout returns server.shutdownTimeout.
func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }

// PingInterval returns live.pingInterval.
func (c *Config) PingInterval() time.Duration { return mustDuration(c.Live.PingInterval) }

// ResumeWindow returns session.resumeWindow.
func (c *Config) ResumeWindow() time.Duration { return mustDuration(c.Session.ResumeWindow) }

// CleanupInterval returns session.cleanupInterval.
func (c *Config) CleanupInterval() time.Duration { return mustDuration(c.Session.CleanupInterval) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing contactform.json, or an error wrapping
// fs.ErrNotExist if none is found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("CF030").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				Wrap(fs.ErrNotExist)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest directory at or
// above the working directory that has contactform.json. Without one the
// defaults are used.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Load(wd)
		}
		return nil, err
	}

	return Load(root)
}
