package watch

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
)

// Router returns the status server routes:
//
//	GET /healthz                      liveness and last check summary
//	GET /metrics                      Prometheus metrics, when configured
//	GET /ws                           check events over WebSocket
//	GET /api/interfaces               package metadata (?format=yaml)
//	GET /api/interfaces/{kind}/{name} metadata of one document
//	GET /api/diagnostics              outstanding errors
//
// With Auth configured every route but /healthz needs a bearer token.
func (ds *DevServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ds.requestLogger)

	r.Get("/healthz", ds.handleHealth)

	r.Group(func(r chi.Router) {
		if ds.config.Auth != nil {
			r.Use(ds.config.Auth.Middleware)
		}

		if m := ds.config.Workspace.Metrics; m != nil {
			r.Method(http.MethodGet, "/metrics", m.Handler())
		}
		r.Get("/ws", ds.hub.HandleWebSocket)

		r.Route("/api", func(r chi.Router) {
			r.Get("/interfaces", ds.handleInterfaces)
			r.Get("/interfaces/{kind}/{name}", ds.handleInterface)
			r.Get("/diagnostics", ds.handleDiagnostics)
		})

		if ds.config.Profiling {
			r.Route("/debug/pprof", func(r chi.Router) {
				r.HandleFunc("/", pprof.Index)
				r.HandleFunc("/cmdline", pprof.Cmdline)
				r.HandleFunc("/profile", pprof.Profile)
				r.HandleFunc("/symbol", pprof.Symbol)
				r.HandleFunc("/trace", pprof.Trace)
				r.Handle("/{profile}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					pprof.Handler(chi.URLParam(req, "profile")).ServeHTTP(w, req)
				}))
			})
		}
	})

	return r
}

func (ds *DevServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		ds.logger.Debug("status request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

type healthResponse struct {
	Status    string       `json:"status"`
	Package   string       `json:"package"`
	Files     int          `json:"files"`
	Failed    int          `json:"failed"`
	LastCheck string       `json:"last_check,omitempty"`
	Clients   int          `json:"clients"`
	Cache     *cacheHealth `json:"cache,omitempty"`
}

type cacheHealth struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	StoreHits int64   `json:"store_hits"`
	HitRate   float64 `json:"hit_rate"`
}

func (ds *DevServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := ds.checker.Snapshot()
	resp := healthResponse{
		Status:  "ok",
		Package: ds.checker.Package(),
		Files:   len(snapshot),
		Clients: ds.hub.ConnectionCount(),
	}
	for _, res := range snapshot {
		if res.Err != nil {
			resp.Failed++
		}
	}
	if c := ds.config.Workspace.Cache; c != nil {
		stats := c.Stats()
		resp.Cache = &cacheHealth{
			Entries:   stats.Entries,
			Hits:      stats.Hits,
			Misses:    stats.Misses,
			StoreHits: stats.StoreHits,
			HitRate:   stats.HitRate(),
		}
	}
	if last := ds.checker.LastCheck(); !last.IsZero() {
		resp.LastCheck = last.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (ds *DevServer) handleInterfaces(w http.ResponseWriter, r *http.Request) {
	format := metadata.Format(r.URL.Query().Get("format"))
	data, err := metadata.Encode(ds.checker.Metadata(), format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contentType := "application/json"
	if format == metadata.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (ds *DevServer) handleInterface(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := chi.URLParam(r, "name")

	for _, iface := range ds.checker.Metadata().Interfaces {
		if iface.Kind == kind && iface.Name == name {
			writeJSON(w, http.StatusOK, iface)
			return
		}
	}
	http.Error(w, "interface not found", http.StatusNotFound)
}

func (ds *DevServer) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, errors.NewReport(ds.checker.Diagnostics()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
