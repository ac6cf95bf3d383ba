package main

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/contactform/internal/config"
	"github.com/vango-dev/contactform/internal/errors"
	"github.com/vango-dev/contactform/pkg/middleware"
	"github.com/vango-dev/contactform/pkg/server"
	"github.com/vango-dev/contactform/pkg/session"
)

type serveOptions struct {
	port       int
	host       string
	configPath string
	dev        bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the contact form server",
		Long: `Start the HTTP server for the contact form.

Configuration is read from contactform.json in the project root when
present. Environment variables and flags override the file.

Examples:
  contactform serve
  contactform serve --port=8080
  contactform serve --config=./deploy/contactform.json
  contactform serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to run on (default from contactform.json)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from contactform.json)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Development mode: debug logs, any live origin")

	return cmd
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(opts serveOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if opts.port > 0 {
		cfg.Port = opts.port
	}
	if opts.host != "" {
		cfg.Host = opts.host
	}
	if opts.dev {
		cfg.Dev = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serverConfig maps the file configuration onto the server's.
func serverConfig(cfg *config.Config) *server.ServerConfig {
	sc := server.DefaultServerConfig()
	sc.Address = cfg.Address()
	sc.ReadTimeout = cfg.ReadTimeout()
	sc.ReadHeaderTimeout = cfg.ReadHeaderTimeout()
	sc.WriteTimeout = cfg.WriteTimeout()
	sc.IdleTimeout = cfg.IdleTimeout()
	sc.ShutdownTimeout = cfg.ShutdownTimeout()
	sc.LivePath = cfg.Live.Path
	sc.PingInterval = cfg.PingInterval()
	sc.MaxMessageSize = cfg.Live.MaxMessageSize
	sc.ResumeWindow = cfg.ResumeWindow()
	sc.CookieName = cfg.Session.CookieName
	sc.CookieSecure = cfg.Session.CookieSecure
	sc.MetricsPath = cfg.Metrics.Path

	switch {
	case cfg.Dev:
		sc.CheckOrigin = server.AllowAnyOrigin
	case len(cfg.Live.AllowedOrigins) > 0:
		sc.CheckOrigin = server.AllowOrigins(cfg.Live.AllowedOrigins...)
	}
	return sc
}

// newServer wires the store, metrics and tracer into a server. The
// returned store is closed by the caller.
func newServer(cfg *config.Config, logOut io.Writer) (*server.Server, *session.MemoryStore, error) {
	logger, err := newLogger(logOut, cfg)
	if err != nil {
		return nil, nil, err
	}

	store := session.NewMemoryStore(session.WithCleanupInterval(cfg.CleanupInterval()))
	opts := []server.Option{
		server.WithStore(store),
		server.WithLogger(logger.With("component", "server")),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		mopts := []middleware.MetricsOption{
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithSubsystem(cfg.Metrics.Subsystem),
			middleware.WithRegistry(reg),
		}
		if len(cfg.Metrics.Buckets) > 0 {
			mopts = append(mopts, middleware.WithBuckets(cfg.Metrics.Buckets))
		}
		opts = append(opts, server.WithMetrics(middleware.NewMetrics(mopts...), reg))
	}

	tracerOpts := []middleware.OTelOption{middleware.WithTracerName(cfg.Tracing.TracerName)}
	if cfg.Tracing.Enabled {
		tracerOpts = append(tracerOpts, middleware.WithTracerProvider(otel.GetTracerProvider()))
	} else {
		tracerOpts = append(tracerOpts, middleware.WithTracerProvider(noop.NewTracerProvider()))
	}
	opts = append(opts, server.WithTracer(middleware.NewTracer(tracerOpts...)))

	return server.New(serverConfig(cfg), opts...), store, nil
}

func runServe(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config) error {
	srv, store, err := newServer(cfg, stderr)
	if err != nil {
		return err
	}
	defer store.Close()

	printBanner(stdout)
	success(stdout, "Serving on %s", cfg.URL())
	if cfg.Dev {
		warn(stdout, "Development mode: live channel accepts any origin")
	}
	if cfg.Metrics.Enabled {
		info(stdout, "Metrics at %s%s", cfg.URL(), cfg.Metrics.Path)
	}

	if err := srv.Run(ctx); err != nil {
		if stderrors.Is(err, syscall.EADDRINUSE) {
			errorMsg(stderr, "Address %s is already in use", cfg.Address())
			return errors.New("CF041").
				WithSuggestion("Stop the other process or pick another port with --port.").
				Wrap(err)
		}
		return errors.New("CF040").Wrap(err)
	}
	success(stdout, "Server stopped")
	return nil
}
