package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/mrossi/gestionale/internal/infra/bigquery"
)

// resourceLabels are the Notion select options for the two record kinds.
var resourceLabels = map[string]string{
	"payments": "Pagamento",
	"expenses": "Spesa",
}

// RecordToNotionProperties converts a confirmed record to Notion
// properties for the mirror database.
func RecordToNotionProperties(rec bigquery.StoredRecord) notionapi.Properties {
	props := notionapi.Properties{
		"Record ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.ID,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: rec.Amount,
		},
		"Imported At": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: (*notionapi.Date)(&rec.CreatedTS),
			},
		},
	}

	label := resourceLabels[string(rec.Resource)]
	if label == "" {
		label = string(rec.Resource)
	}
	props["Type"] = notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: label,
		},
	}

	if rec.InvoiceRef != "" {
		props["Invoice Ref"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.InvoiceRef,
					},
				},
			},
		}
	}

	if !rec.Date.IsZero() {
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						rec.Date.Year,
						rec.Date.Month,
						rec.Date.Day,
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		}
	}

	if rec.Detail != "" {
		props["Detail"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Detail,
					},
				},
			},
		}
	}

	return props
}
