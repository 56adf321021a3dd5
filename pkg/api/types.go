package api

import (
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port int
	Bind string
	// APIKey, when set, is required in the X-API-Key header of /api/v1
	// requests.
	APIKey string
	// CORSOrigins enables CORS for these origins. Empty disables it.
	CORSOrigins []string
}

// RecordIndex is the read side of the record index
type RecordIndex interface {
	Get(id formid.ID) (*storage.Entry, error)
	Scan(pluginIndex uint32) ([]storage.Entry, error)
	FindEditorID(editorID string) ([]storage.Entry, error)
	Runs() ([]storage.Run, error)
}

// PluginInfo describes one plugin of the served load order
type PluginInfo struct {
	Index uint32 `json:"index"`
	Name  string `json:"name"`
}
