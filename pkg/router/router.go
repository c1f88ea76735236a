package router

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ShutdownTimeout is the default wait for in-flight requests on shutdown.
const ShutdownTimeout = 10 * time.Second

type HandlerFunc func(http.ResponseWriter, *http.Request)

type Router struct {
	mux      *http.ServeMux
	routes   map[string]HandlerFunc // key = METHOD:PATH
	paths    map[string]bool        // track registered paths
	patterns []string               // wildcard paths in registration order

	// GracePeriod bounds how long Start waits for in-flight requests;
	// zero means ShutdownTimeout.
	GracePeriod time.Duration
}

func New() *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
	}
	// Catch-all handler dispatching every request
	r.mux.HandleFunc("/", r.dispatch)
	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	if h, route := r.lookup(req.Method, req.URL.Path); h != nil {
		h(lrw, req)
	} else if route != "" {
		lrw.Header().Set("Allow", strings.Join(r.methods(route), ", "))
		http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
	} else {
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	duration := time.Since(start)
	logEvent(lrw.statusCode).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", lrw.statusCode).
		Dur("duration", duration).
		Msg("request")
}

// lookup returns the handler for method and path. When only the method is
// wrong, the matched route is returned with a nil handler.
func (r *Router) lookup(method, path string) (HandlerFunc, string) {
	if r.paths[path] {
		return r.routes[method+":"+path], path
	}
	for _, pattern := range r.patterns {
		if matchWildcardRoute(path, pattern) {
			if h, ok := r.routes[method+":"+pattern]; ok {
				return h, pattern
			}
		}
	}
	for _, pattern := range r.patterns {
		if matchWildcardRoute(path, pattern) {
			return nil, pattern
		}
	}
	return nil, ""
}

func (r *Router) methods(path string) []string {
	var out []string
	for key := range r.routes {
		if m, p, _ := strings.Cut(key, ":"); p == path {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out
}

func logEvent(status int) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	default:
		return log.Info()
	}
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	// Split both paths into segments
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	// A trailing wildcard matches one or more remaining segments
	if len(routeSegments) > 0 && routeSegments[len(routeSegments)-1] == "*" {
		if len(requestSegments) < len(routeSegments) {
			return false
		}
		for i := 0; i < len(routeSegments)-1; i++ {
			if routeSegments[i] != "*" && requestSegments[i] != routeSegments[i] {
				return false
			}
		}
		return requestSegments[len(routeSegments)-1] != ""
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			if requestSegments[i] == "" {
				return false
			}
			continue
		}
		if requestSegments[i] != routeSegment {
			return false
		}
	}
	return true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	key := method + ":" + path
	r.routes[key] = handler
	if !r.paths[path] && strings.Contains(path, "*") {
		r.patterns = append(r.patterns, path)
	}
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)   { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)  { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)   { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc) { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Handle mounts an http.Handler for GET requests on path.
func (r *Router) Handle(path string, h http.Handler) {
	r.register(http.MethodGet, path, h.ServeHTTP)
}

// Getter methods for testing
func (r *Router) Routes() map[string]HandlerFunc {
	return r.routes
}

func (r *Router) Paths() map[string]bool {
	return r.paths
}

// ServeHTTP lets the router be used as an http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// --- Start server ---

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	grace := r.GracePeriod
	if grace <= 0 {
		grace = ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	log.Info().Msg("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Flush supports streaming handlers.
func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
