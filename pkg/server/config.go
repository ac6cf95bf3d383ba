package server

import (
	"net/http"
	"net/url"
	"time"
)

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: "localhost:3000".
	Address string

	// Title is the page title.
	// Default: "Contact Form".
	Title string

	// HTTP server timeouts

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// Live channel

	// LivePath is the WebSocket endpoint. An empty path disables the live
	// channel and the page works as a plain HTML form.
	// Default: "/live".
	LivePath string

	// PingInterval is the time between server pings. A client that misses
	// two pings is disconnected.
	// Default: 30 seconds.
	PingInterval time.Duration

	// WriteWait is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteWait time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 4KB.
	MaxMessageSize int64

	// ReadBufferSize and WriteBufferSize are the WebSocket buffer sizes.
	// Default: 4096.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin is called to validate the request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Sessions

	// ResumeWindow is how long the state of a closed live connection is
	// kept for a page reload or reconnect.
	// Default: 5 minutes.
	ResumeWindow time.Duration

	// CookieName is the session cookie name.
	// Default: "contactform_session".
	CookieName string

	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool

	// Observability

	// MetricsPath is where Prometheus metrics are exposed when a gatherer is
	// configured with WithMetrics.
	// Default: "/metrics".
	MetricsPath string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           "localhost:3000",
		Title:             "Contact Form",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		LivePath:          "/live",
		PingInterval:      30 * time.Second,
		WriteWait:         10 * time.Second,
		MaxMessageSize:    4096,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		ResumeWindow:      5 * time.Minute,
		CookieName:        "contactform_session",
		MetricsPath:       "/metrics",
	}
}

// fillDefaults sets every zero field to its default. LivePath is left
// alone so that it can be disabled.
func (c *ServerConfig) fillDefaults() {
	d := DefaultServerConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.WriteWait == 0 {
		c.WriteWait = d.WriteWait
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.ResumeWindow == 0 {
		c.ResumeWindow = d.ResumeWindow
	}
	if c.CookieName == "" {
		c.CookieName = d.CookieName
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
}

// Clone returns a copy of the ServerConfig.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}

	return originURL.Host == host
}

// AllowOrigins returns an origin check that accepts same-origin requests
// and the listed origins.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		return SameOriginCheck(r) || allowed[r.Header.Get("Origin")]
	}
}

// AllowAnyOrigin accepts every origin. Only for development.
func AllowAnyOrigin(*http.Request) bool { return true }
