package net

import (
	"encoding/json"
	nethttp "net/http"

	"skirmish/server/internal/game"
	"skirmish/server/internal/net/ws"
	"skirmish/server/internal/telemetry"
)

// HTTPHandlerConfig wires the HTTP surface.
type HTTPHandlerConfig struct {
	ClientDir string
	Logger    telemetry.Logger
}

// NewHTTPHandler builds the server mux: static client assets at the
// root, the websocket gateway at /ws, plus health and diagnostics.
func NewHTTPHandler(gateway *ws.Gateway, registry *game.Registry, cfg HTTPHandlerConfig) nethttp.Handler {
	mux := nethttp.NewServeMux()

	if cfg.ClientDir != "" {
		mux.Handle("/", nethttp.FileServer(nethttp.Dir(cfg.ClientDir)))
	}

	mux.HandleFunc("/ws", gateway.Handle)

	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		snapshot := struct {
			game.RegistryStats
			Sessions int `json:"sessions"`
		}{
			RegistryStats: registry.Stats(),
			Sessions:      gateway.SessionCount(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil && cfg.Logger != nil {
			cfg.Logger.Printf("failed to encode diagnostics: %v", err)
		}
	})

	return mux
}
