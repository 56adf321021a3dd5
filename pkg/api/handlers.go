package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/storage"
)

// Server holds the API server state
type Server struct {
	index     RecordIndex
	loadOrder *formid.LoadOrder
	config    ServerConfig
	metrics   *Metrics
}

// NewServer creates a new API server
func NewServer(index RecordIndex, lo *formid.LoadOrder, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		index:     index,
		loadOrder: lo,
		config:    config,
		metrics:   metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	plugins := make([]PluginInfo, 0, s.loadOrder.Len())
	for i, name := range s.loadOrder.Names() {
		plugins = append(plugins, PluginInfo{Index: uint32(i), Name: name})
	}
	sendSuccess(w, plugins)
}

// handleGetRecord returns the winning version of one record. The plugin
// is a load order name or index; the local ID is hex.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	pluginIndex, ok := s.pluginParam(w, r)
	if !ok {
		return
	}
	local, err := parseHex(chi.URLParam(r, "local"))
	if err != nil || local > 0xFFFFFF {
		sendError(w, "Local ID must be a hex value below 0x1000000", http.StatusBadRequest)
		return
	}

	start := time.Now()
	entry, err := s.index.Get(formid.ID{Plugin: pluginIndex, Local: local})
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.RecordIndexLookup("get", true, time.Since(start))
		sendError(w, "Record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.metrics.RecordIndexLookup("get", false, time.Since(start))
		sendError(w, "Failed to read record index", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordIndexLookup("get", true, time.Since(start))
	sendSuccess(w, entry)
}

// handleListPluginRecords returns every indexed record owned by a plugin,
// optionally filtered by the tag query parameter.
func (s *Server) handleListPluginRecords(w http.ResponseWriter, r *http.Request) {
	pluginIndex, ok := s.pluginParam(w, r)
	if !ok {
		return
	}
	tag := r.URL.Query().Get("tag")

	start := time.Now()
	entries, err := s.index.Scan(pluginIndex)
	s.metrics.RecordIndexLookup("scan", err == nil, time.Since(start))
	if err != nil {
		sendError(w, "Failed to read record index", http.StatusInternalServerError)
		return
	}

	if tag != "" {
		filtered := make([]storage.Entry, 0, len(entries))
		for _, e := range entries {
			if e.Tag.String() == tag {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	sendSuccess(w, entries)
}

// handleFindEditorID returns every record carrying the editor ID, in
// FormID order.
func (s *Server) handleFindEditorID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.index.FindEditorID(chi.URLParam(r, "editorID"))
	s.metrics.RecordIndexLookup("editor_id", err == nil, time.Since(start))
	if err != nil {
		sendError(w, "Failed to read record index", http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		sendError(w, "No record has that editor ID", http.StatusNotFound)
		return
	}
	sendSuccess(w, entries)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	runs, err := s.index.Runs()
	s.metrics.RecordIndexLookup("runs", err == nil, time.Since(start))
	if err != nil {
		sendError(w, "Failed to read runs", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, runs)
}

func (s *Server) pluginParam(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "plugin")
	if i, ok := s.loadOrder.Index(raw); ok {
		return i, true
	}
	if n, err := strconv.ParseUint(raw, 10, 32); err == nil && int(n) < s.loadOrder.Len() {
		return uint32(n), true
	}
	sendError(w, "Plugin is not in the load order", http.StatusNotFound)
	return 0, false
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 32)
	return uint32(n), err
}
