package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mrossi/gestionale/internal/api/handlers"
	"github.com/mrossi/gestionale/internal/api/middleware"
	"github.com/mrossi/gestionale/internal/extract"
	"github.com/mrossi/gestionale/internal/gcs"
	infraBQ "github.com/mrossi/gestionale/internal/infra/bigquery"
	"github.com/mrossi/gestionale/internal/jobs"
	"github.com/mrossi/gestionale/internal/jobs/inmemory"
	"github.com/mrossi/gestionale/internal/logger"
	"github.com/mrossi/gestionale/internal/mailer"
)

func main() {
	var (
		port    = flag.String("port", "8080", "HTTP server port")
		project = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		dataset = flag.String("dataset", os.Getenv("BQ_DATASET"), "BigQuery dataset (or set BQ_DATASET env)")
		bucket  = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name for document uploads (or set GCS_BUCKET env)")
		model   = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name (or set GEMINI_MODEL env)")
	)
	flag.Parse()

	log := logger.New("api")

	if *project == "" || *dataset == "" {
		log.Fatal().Msg("GCP project and BigQuery dataset are required")
	}
	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - document uploads will be disabled")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create record repository")
	}
	defer repo.Close()

	store := gcs.NewStore(*bucket)
	extractor := extract.NewGeminiExtractor(*model)

	// Job infrastructure for background extraction
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		exJob, ok := job.(*jobs.ExtractDraftsJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", exJob.JobID).
			Int("sources", len(exJob.SourceURIs)).
			Msg("Processing extraction job")

		files := make([]extract.SourceFile, 0, len(exJob.SourceURIs))
		for _, uri := range exJob.SourceURIs {
			data, err := store.Fetch(ctx, uri)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", uri, err)
			}
			name := gcs.FilenameFromURI(uri)
			files = append(files, extract.SourceFile{
				Name:     name,
				MIMEType: extract.MIMETypeForFile(name),
				Data:     data,
			})
		}

		batch, err := extractor.ExtractDrafts(ctx, files)
		if err != nil {
			log.Error().Err(err).Str("job_id", exJob.JobID).Msg("Extraction failed")
			return err
		}
		exJob.Batch = &batch

		log.Info().
			Str("job_id", exJob.JobID).
			Int("records", len(batch.Records)).
			Msg("Extraction completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting extraction worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Extraction worker stopped with error")
		}
	}()

	outbound := mailer.New(&mailer.LogTransport{Log: log}, log)

	documentsHandler := handlers.NewDocumentsHandler(store, jobQueue, jobStore, log)
	draftsHandler := handlers.NewDraftsHandler(repo, repo, log)
	workspaceHandler := handlers.NewWorkspaceHandler(repo, log)
	mailHandler := handlers.NewMailHandler(outbound, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/documents/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			documentsHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/documents/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			documentsHandler.EnqueueExtraction(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			documentsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			documentsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/drafts/validate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			draftsHandler.Validate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/drafts/confirm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			draftsHandler.Confirm(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/workspace", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			workspaceHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/mail/send", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mailHandler.Send(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
