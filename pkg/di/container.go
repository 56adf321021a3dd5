// Package di provides dependency injection container
package di

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssargent/espkit/pkg/api"
	"github.com/ssargent/espkit/pkg/metrics"
	"github.com/ssargent/espkit/pkg/plugin"
)

// Container holds all the dependencies for the application
type Container struct {
	logger        *slog.Logger
	registry      *prometheus.Registry
	decodeMetrics *metrics.Decode
	plugins       *plugin.Registry
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container. Decode and
// HTTP metrics share one Prometheus registry so /metrics exposes both.
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Container{
		logger:        slog.Default(),
		registry:      registry,
		decodeMetrics: metrics.NewDecode(registry),
		plugins:       plugin.DefaultRegistry(),
	}
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// SetLogger replaces the application logger
func (c *Container) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// GetRegistry returns the Prometheus registry
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetDecodeMetrics returns the decode metrics
func (c *Container) GetDecodeMetrics() *metrics.Decode {
	return c.decodeMetrics
}

// GetPluginRegistry returns the record decoder registry
func (c *Container) GetPluginRegistry() *plugin.Registry {
	return c.plugins
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	if c.serverFactory == nil {
		return api.NewServerFactory(c.registry, c.logger)
	}
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// DecodeOptions returns plugin decode options wired to the container
func (c *Container) DecodeOptions(continueOnError bool) plugin.Options {
	return plugin.Options{
		ContinueOnError: continueOnError,
		Registry:        c.plugins,
		Logger:          c.logger,
		Metrics:         c.decodeMetrics,
	}
}
