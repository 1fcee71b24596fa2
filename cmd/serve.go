package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/internal/pricing"
	"github.com/medtrace-labs/medverify-cli/internal/provenance"
	"github.com/medtrace-labs/medverify-cli/internal/reconcile"
	"github.com/medtrace-labs/medverify-cli/internal/report"
	"github.com/medtrace-labs/medverify-cli/internal/resolve"
)

var servePort int

// apiServer serves the verification API over read-only catalog and
// registry snapshots loaded at startup. Snapshot refresh means restarting
// the server after a registry sync.
type apiServer struct {
	resolver       *resolve.Resolver
	pipeline       *reconcile.Pipeline
	catalog        []model.MedicineRecord
	registry       *provenance.Registry
	reporter       report.Reporter
	minorThreshold float64
	limiter        *rate.Limiter
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer store.Close()

		catalog, err := store.LoadCatalog(ctx)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}
		allocations, err := store.LoadRegistry(ctx)
		if err != nil {
			return eris.Wrap(err, "load registry")
		}

		resolver, err := newResolver()
		if err != nil {
			return err
		}

		api := &apiServer{
			resolver:       resolver,
			pipeline:       reconcile.New(resolver, cfg.Match.PipelineConfig()),
			catalog:        catalog,
			registry:       provenance.NewRegistry(allocations),
			reporter:       report.NewStoreReporter(store),
			minorThreshold: cfg.Match.MinorOverageThreshold,
			limiter:        rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("catalog_entries", len(catalog)),
			zap.Int("registry_entries", api.registry.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.rateLimit)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Post("/verify-batch", s.handleVerifyBatch)
		r.Post("/price-check", s.handlePriceCheck)
		r.Post("/reconcile", s.handleReconcile)
	})

	return r
}

func (s *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	writeJSON(w, http.StatusOK, s.resolver.Resolve(req.Name, s.catalog))
}

func (s *apiServer) handleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	var req provenance.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BatchNumber == "" {
		writeError(w, http.StatusBadRequest, "batch_number is required")
		return
	}

	verdict := provenance.Verify(req, s.registry)

	if verdict.IsFraud {
		if _, err := s.reporter.File(r.Context(), req.BatchNumber, verdict); err != nil {
			zap.L().Error("failed to file fraud report",
				zap.String("batch", req.BatchNumber),
				zap.Error(err),
			)
		}
	}

	writeJSON(w, http.StatusOK, verdict)
}

func (s *apiServer) handlePriceCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		ObservedPrice string `json:"observed_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	var referenceText string
	resolution := s.resolver.Resolve(req.Name, s.catalog)
	if resolution.Found {
		referenceText = strconv.FormatFloat(resolution.Record.ExpectedPrice, 'f', -1, 64)
	}

	writeJSON(w, http.StatusOK, struct {
		Resolution resolve.Result `json:"resolution"`
		Price      pricing.Result `json:"price"`
	}{resolution, pricing.ClassifyText(req.ObservedPrice, referenceText, s.minorThreshold)})
}

func (s *apiServer) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []model.RawLineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}

	summary, err := s.pipeline.Reconcile(r.Context(), req.Items, s.catalog)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		zap.L().Debug("api request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
