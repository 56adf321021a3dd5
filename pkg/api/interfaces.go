// Package api serves a decoded, indexed load order over HTTP
package api

import (
	"context"

	"github.com/ssargent/espkit/pkg/formid"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, index RecordIndex, lo *formid.LoadOrder, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
