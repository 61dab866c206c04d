package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/mrossi/gestionale/internal/draft"
	"github.com/mrossi/gestionale/internal/infra/bigquery"
	"github.com/mrossi/gestionale/internal/logger"
)

// RecordLister reads back confirmed records for mirroring.
type RecordLister interface {
	ListCreatedSince(ctx context.Context, resource draft.Resource, since time.Time) ([]bigquery.StoredRecord, error)
}

// SyncRecords mirrors confirmed payments and expenses created since the
// given instant into a Notion database. The mirror is best-effort and
// one-directional: a page that fails to create is logged and skipped,
// and existing pages are never touched. Record IDs already present in
// Notion are skipped for idempotency.
func SyncRecords(ctx context.Context, lister RecordLister, notionClient NotionService, notionDBID string, since time.Time, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Time("since", since).
		Bool("dry_run", dryRun).
		Msg("Starting record sync to Notion")

	var records []bigquery.StoredRecord
	for _, resource := range []draft.Resource{draft.ResourcePayments, draft.ResourceExpenses} {
		batch, err := lister.ListCreatedSince(ctx, resource, since)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", resource, err)
		}
		records = append(records, batch...)
	}

	log.Info().Int("record_count", len(records)).Msg("Retrieved confirmed records")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	existingIDs := make(map[string]bool)
	for _, page := range notionPages {
		if id := extractRecordID(page); id != "" {
			existingIDs[id] = true
		}
	}

	var created, skipped int
	for _, rec := range records {
		if existingIDs[rec.ID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("record_id", rec.ID).
				Str("resource", string(rec.Resource)).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		props := RecordToNotionProperties(rec)

		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("record_id", rec.ID).
				Msg("Failed to create Notion page")
			continue
		}

		log.Info().
			Str("record_id", rec.ID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(records)).
		Msg("Record sync completed")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractRecordID extracts the record ID from a Notion page's title
// property. Returns empty string if not found.
func extractRecordID(page notionapi.Page) string {
	if prop, ok := page.Properties["Record ID"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
