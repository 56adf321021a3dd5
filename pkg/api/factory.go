package api

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/espkit/pkg/formid"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct {
	registry *prometheus.Registry
	logger   *slog.Logger
}

// NewServerFactory creates a server factory whose servers register their
// metrics with registry and expose it on /metrics
func NewServerFactory(registry *prometheus.Registry, logger *slog.Logger) ServerFactory {
	return &DefaultServerFactory{registry: registry, logger: logger}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{registry: f.registry, logger: f.logger}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct {
	registry *prometheus.Registry
	logger   *slog.Logger
}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, index RecordIndex, lo *formid.LoadOrder, config ServerConfig) error {
	return StartServer(ctx, index, lo, config, s.registry, s.logger)
}
