package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rxtally/dispense-cli/internal/model"
	"github.com/rxtally/dispense-cli/internal/pipeline"
	"github.com/rxtally/dispense-cli/internal/sig"
	"github.com/rxtally/dispense-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommendation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(chimiddleware.RequestID)
		r.Use(chimiddleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/v1/parse", handleParse)
		r.Post("/v1/recommend", handleRecommend(st))
		r.Get("/v1/runs", handleListRuns(st))
		r.Get("/v1/runs/{id}", handleGetRun(st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SigText string `json:"sig_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed, err := sig.Interpret(req.SigText)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func handleRecommend(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SigText == "" {
			writeError(w, http.StatusBadRequest, "sig_text is required")
			return
		}
		if req.DaysSupply < 1 || req.DaysSupply > 365 {
			writeError(w, http.StatusBadRequest, "days_supply must be between 1 and 365")
			return
		}
		if len(req.Catalog) == 0 && req.DrugName != "" {
			catalog, err := newDirectoryClient().SearchByName(r.Context(), req.DrugName, 25)
			if err != nil {
				writeError(w, http.StatusBadGateway, "catalog lookup failed")
				return
			}
			req.Catalog = catalog
		}

		run, err := st.CreateRun(r.Context(), req)
		if err != nil {
			zap.L().Error("serve: create run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "store failure")
			return
		}

		rec, err := pipeline.Recommend(r.Context(), req)
		if err != nil {
			if failErr := st.FailRun(r.Context(), run.ID, err.Error()); failErr != nil {
				zap.L().Warn("serve: fail run", zap.Error(failErr))
			}
			writeFailure(w, err)
			return
		}
		if err := st.CompleteRun(r.Context(), run.ID, rec); err != nil {
			zap.L().Warn("serve: complete run", zap.Error(err))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"run_id":         run.ID,
			"recommendation": rec,
		})
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status:   model.RunStatus(r.URL.Query().Get("status")),
			DrugName: r.URL.Query().Get("drug"),
			Limit:    50,
		}
		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("serve: list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "store failure")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// writeFailure maps the pipeline's sentinel failures to HTTP statuses so
// clients can give differentiated guidance.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotParseable):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   "sig_not_parseable",
			"message": "could not interpret the instruction; try a format like \"Take 1 tablet twice daily\"",
		})
	case errors.Is(err, model.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNoPackagesAvailable):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "no_packages_available",
			"message": "no active packages with a known size were found for this drug",
		})
	default:
		zap.L().Error("serve: recommendation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
