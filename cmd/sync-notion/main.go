package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	infraBQ "github.com/mrossi/gestionale/internal/infra/bigquery"
	"github.com/mrossi/gestionale/internal/logger"
	"github.com/mrossi/gestionale/internal/notionsync"
)

func main() {
	log := logger.New("sync-notion")

	var (
		project     = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		dataset     = flag.String("dataset", os.Getenv("BQ_DATASET"), "BigQuery dataset (or set BQ_DATASET env)")
		sinceStr    = flag.String("since", "", "Mirror records created since this date, YYYY-MM-DD (required)")
		notionToken = flag.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token (or set NOTION_TOKEN env)")
		notionDBID  = flag.String("notion-db-id", os.Getenv("NOTION_DB_ID"), "Notion database ID (or set NOTION_DB_ID env)")
		dryRun      = flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	)
	flag.Parse()

	if *project == "" || *dataset == "" {
		log.Fatal().Msg("GCP project and BigQuery dataset are required")
	}
	if *sinceStr == "" {
		log.Fatal().Msg("Error: --since is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	since, err := time.Parse("2006-01-02", *sinceStr)
	if err != nil {
		log.Fatal().Err(err).Str("since", *sinceStr).Msg("Error: invalid since format, expected YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("since", *sinceStr).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize record repository")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(*notionToken)

	if err := notionsync.SyncRecords(ctx, repo, notionClient, *notionDBID, since, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}
