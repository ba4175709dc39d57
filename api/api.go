// Package api serves the HTTP endpoints used by query editors: compile previews, query
// execution and table metadata for the pickers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/frames"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

const maxRequestBytes = 1 << 20

// Datasource is what the API needs from the datasource service.
type Datasource interface {
	Compile(q visualquery.VisualQuery) string
	Run(ctx context.Context, q datasource.Query) (*datasource.Result, error)
	Tables(ctx context.Context) ([]string, error)
	TableSchema(ctx context.Context, table string) (*pinot.Schema, error)
	CheckHealth(ctx context.Context) datasource.HealthResult
}

type Config struct {
	Address          string
	ArrowCompression frames.Compression
}

type API struct {
	ds     Datasource
	router *http.ServeMux
	config Config
}

func New(ds Datasource, config Config) *API {
	api := &API{ds: ds, router: http.NewServeMux(), config: config}

	api.router.HandleFunc("GET /healthz", api.Health)
	api.router.HandleFunc("POST /api/v1/compile", api.Compile)
	api.router.HandleFunc("POST /api/v1/query", api.Query)
	api.router.HandleFunc("GET /api/v1/tables", api.Tables)
	api.router.HandleFunc("GET /api/v1/tables/{table}/schema", api.TableSchema)
	api.router.HandleFunc("GET /api/v1/visual-query/default", api.DefaultVisualQuery)
	api.router.HandleFunc("GET /api/v1/operators", api.Operators)
	api.router.HandleFunc("GET /api/v1/functions", api.Functions)

	return api
}

// Handler returns the router wrapped in the middleware chain.
func (api *API) Handler() http.Handler {
	return withMiddleware(api.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (api *API) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:              api.config.Address,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", api.config.Address)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
