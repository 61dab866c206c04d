package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrossi/gestionale/internal/confirm"
	"github.com/mrossi/gestionale/internal/draft"
	"github.com/mrossi/gestionale/internal/extract"
	infraBQ "github.com/mrossi/gestionale/internal/infra/bigquery"
	"github.com/mrossi/gestionale/internal/logger"
)

// import runs the review pipeline once from the command line: extract
// drafts from local documents, validate them against the workspace,
// and optionally confirm the batch into the record store.
func main() {
	log := logger.New("import")

	var (
		project    = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		dataset    = flag.String("dataset", os.Getenv("BQ_DATASET"), "BigQuery dataset (or set BQ_DATASET env)")
		model      = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name (or set GEMINI_MODEL env)")
		doConfirm  = flag.Bool("confirm", false, "Persist valid drafts instead of only reporting them")
		jsonOutput = flag.Bool("json", false, "Print the extracted batch as JSON")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal().Msg("Usage: import [flags] file.pdf [file2.pdf ...]")
	}
	if *project == "" || *dataset == "" {
		log.Fatal().Msg("GCP project and BigQuery dataset are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	files := make([]extract.SourceFile, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Failed to read file")
		}
		name := filepath.Base(path)
		files = append(files, extract.SourceFile{
			Name:     name,
			MIMEType: extract.MIMETypeForFile(name),
			Data:     data,
		})
	}

	extractor := extract.NewGeminiExtractor(*model)

	log.Info().Int("files", len(files)).Msg("Extracting drafts")
	batch, err := extractor.ExtractDrafts(ctx, files)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode batch")
		}
	}

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create record repository")
	}
	defer repo.Close()

	snapshot, err := repo.LoadSnapshot(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load workspace")
	}

	batch = draft.NormalizeBatch(batch)

	invalid := 0
	for _, rec := range batch.Records {
		missing := draft.ValidationErrors(rec, snapshot)
		if len(missing) == 0 {
			fmt.Printf("OK    %s  %s  %.2f\n", rec.Ref(), rec.Resource, rec.Amount.Float64())
			continue
		}
		invalid++
		fmt.Printf("MANCA %s  %s\n", rec.Ref(), missing)
	}

	if !*doConfirm {
		fmt.Printf("%d drafts, %d invalid (dry run, use -confirm to persist)\n", len(batch.Records), invalid)
		return
	}

	if invalid > 0 {
		log.Fatal().Int("invalid", invalid).Msg("Batch has invalid drafts, nothing confirmed")
	}

	report, err := confirm.Confirm(ctx, batch, repo)
	if err != nil {
		log.Fatal().Err(err).Int("created", len(report)).Msg("Confirmation aborted")
	}

	for _, created := range report {
		fmt.Printf("CREATO %s %s (%s)\n", created.Resource, created.ID, created.InvoiceRef)
	}
	fmt.Printf("Confirmed %d records.\n", len(report))
}
