// Package server exposes rendering and pixel inspection over HTTP.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
)

// Size limits for requests
const (
	maxImageSize = 2000
	maxSamples   = 10000
	maxDepth     = 1000
)

// Server handles web requests for the path tracer
type Server struct {
	port int
	log  *slog.Logger
}

// NewServer creates a new web server
func NewServer(port int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{port: port, log: log}
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("static/")))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("starting web server", "addr", "http://localhost"+addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the preset scenes with the default settings
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenes":   scene.Names(),
		"defaults": config.Default(),
		"limits": map[string]int{
			"size":    maxImageSize,
			"samples": maxSamples,
			"depth":   maxDepth,
		},
	})
}

// parseRenderRequest applies query parameters on top of the default settings
func parseRenderRequest(values url.Values) (config.Render, error) {
	cfg := config.Default()
	cfg.Width, cfg.Height = 400, 400
	cfg.SamplesPerPixel = 16

	for key, target := range map[string]*string{
		"scene":      &cfg.Scene,
		"integrator": &cfg.Integrator,
		"bvh":        &cfg.BVH,
		"tonemap":    &cfg.ToneMap,
	} {
		if v := values.Get(key); v != "" {
			*target = v
		}
	}

	var err error
	if cfg.Width, err = parseIntParam(values, "width", cfg.Width, 1, maxImageSize); err != nil {
		return cfg, err
	}
	if cfg.Height, err = parseIntParam(values, "height", cfg.Height, 1, maxImageSize); err != nil {
		return cfg, err
	}
	if cfg.SamplesPerPixel, err = parseIntParam(values, "spp", cfg.SamplesPerPixel, 1, maxSamples); err != nil {
		return cfg, err
	}
	if cfg.MaxDepth, err = parseIntParam(values, "depth", cfg.MaxDepth, 0, maxDepth); err != nil {
		return cfg, err
	}
	if v := values.Get("seed"); v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return cfg, errors.Errorf("invalid seed: %s", v)
		}
	}
	return cfg, cfg.Validate()
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.MarshalWrite(w, v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
