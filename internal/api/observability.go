package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gas-arena/internal/config"
)

// NewDebugServer builds the internal observability server: pprof,
// prometheus /metrics and a liveness check. It returns nil when cfg.Addr
// is empty.
//
// CRITICAL: the listener is forced onto loopback unless AllowExternal is
// set, since pprof endpoints are an easy DoS vector.
func NewDebugServer(cfg config.DebugConfig) *http.Server {
	if cfg.Addr == "" {
		return nil
	}
	addr := cfg.Addr
	if !cfg.AllowExternal && !isLoopback(addr) {
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			port = "6060"
		}
		addr = net.JoinHostPort("127.0.0.1", port)
		log.Printf("⚠️ Debug server forced to %s for security", addr)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// RunDebugServer serves srv until ctx is cancelled. A nil srv blocks until
// ctx is done so callers can treat it like any other component.
func RunDebugServer(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		log.Println("📊 Debug server disabled")
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("📊 Debug server starting on %s", srv.Addr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", srv.Addr)
		log.Printf("   - metrics: http://%s/metrics", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		// The debug server is optional; losing it must not stop the match.
		log.Printf("⚠️ Debug server error: %v", err)
		<-ctx.Done()
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
