package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/n9te9/product-catalog/catalog"
	"github.com/n9te9/product-catalog/graph"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const healthPath = "/healthz"

type server struct {
	catalog         *catalog.Catalog
	graphqlEndpoint string
	graphql         http.Handler
	metricsPath     string
	metrics         *metrics
	logger          *slog.Logger
}

func (s *server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case s.graphqlEndpoint:
		s.graphql.ServeHTTP(w, req)
	case healthPath:
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"products": s.catalog.Len(),
		}); err != nil {
			s.logger.ErrorContext(req.Context(), "failed to write health response", slog.String("error", err.Error()))
		}
	case s.metricsPath:
		if s.metrics == nil {
			http.NotFound(w, req)
			return
		}
		s.metrics.handler().ServeHTTP(w, req)
	default:
		http.NotFound(w, req)
	}
}

// NewHandler builds the HTTP surface over c: the GraphQL endpoint, health and metrics.
func NewHandler(opt ServerOption, c *catalog.Catalog, logger *slog.Logger) (http.Handler, error) {
	schema, err := graph.NewSchema(c, graph.SchemaOption{MaxParallelism: opt.MaxParallelism})
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	timeout, err := opt.Timeout()
	if err != nil {
		return nil, err
	}

	s := &server{
		catalog:         c,
		graphqlEndpoint: opt.Endpoint,
		logger:          logger,
	}
	if opt.Metrics.Enable {
		s.metrics = newMetrics()
		s.metricsPath = opt.Metrics.Path
	}

	var h http.Handler = newGraphQLHandler(schema, logger, s.metrics, timeout)
	if opt.Opentelemetry.TracingSetting.Enable {
		h = otelhttp.NewHandler(h, opt.ServiceName)
	}
	s.graphql = h

	return withRequestID(s), nil
}

// LoadCatalog loads the configured catalog file, or the embedded catalog when none is set.
func LoadCatalog(opt ServerOption) (*catalog.Catalog, error) {
	if opt.CatalogFile == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(opt.CatalogFile)
}

// Serve serves handler on ln until ctx is done, then shuts down within shutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

// Run loads the catalog and serves it until SIGINT or SIGTERM. A catalog that cannot be loaded
// is returned as an error before any port is bound.
func Run(opt ServerOption) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	logger, err := NewLogger(os.Stdout, opt.LogLevel)
	if err != nil {
		return err
	}

	c, err := LoadCatalog(opt)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	shutdownTimeout, err := opt.Shutdown()
	if err != nil {
		return err
	}

	if opt.Opentelemetry.TracingSetting.Enable {
		shutdownTracing, err := setupTracing(ctx, opt.ServiceName, opt.Opentelemetry.TracingSetting)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("failed to shut down tracing", slog.String("error", err.Error()))
			}
		}()
	}

	handler, err := NewHandler(opt, c, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opt.Port))
	if err != nil {
		return err
	}

	logger.Info("server started",
		slog.String("addr", ln.Addr().String()),
		slog.String("endpoint", opt.Endpoint),
		slog.Int("products", c.Len()),
	)

	if err := Serve(ctx, ln, handler, shutdownTimeout); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
