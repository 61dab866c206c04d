package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mrossi/gestionale/internal/draft"
)

// DefaultModelName is the Gemini model used for draft extraction.
const DefaultModelName = "gemini-2.5-flash"

// GeminiExtractor implements Extractor against the Gemini API.
type GeminiExtractor struct {
	model string
}

// NewGeminiExtractor creates an extractor for the given model name;
// empty means DefaultModelName.
func NewGeminiExtractor(model string) *GeminiExtractor {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiExtractor{model: model}
}

// ExtractDrafts sends the documents to Gemini and decodes the response
// into a draft batch. The drafts are untrusted output: callers must run
// them through validation before any of them becomes a real record.
func (e *GeminiExtractor) ExtractDrafts(ctx context.Context, files []SourceFile) (draft.Batch, error) {
	if len(files) == 0 {
		return draft.Batch{}, fmt.Errorf("ExtractDrafts: no source files")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return draft.Batch{}, fmt.Errorf("ExtractDrafts: create genai client: %w", err)
	}

	parts := []*genai.Part{{Text: buildExtractionPrompt(files)}}
	for _, f := range files {
		mime := f.MIMEType
		if mime == "" {
			mime = "application/pdf"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mime, Data: f.Data},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return draft.Batch{}, fmt.Errorf("ExtractDrafts: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return draft.Batch{}, fmt.Errorf("ExtractDrafts: empty response from model")
	}

	batch, err := decodeBatch(rawText, files)
	if err != nil {
		return draft.Batch{}, fmt.Errorf("ExtractDrafts: %w\nraw response: %s", err, rawText)
	}
	batch.Model = e.model
	return batch, nil
}

// decodeBatch parses the model output into a normalized draft batch.
// It tolerates Markdown fences, assigns session-stable identifiers to
// records the model left unidentified, and stamps the source file names.
func decodeBatch(raw string, files []SourceFile) (draft.Batch, error) {
	clean := cleanModelJSON(raw)

	var batch draft.Batch
	if err := json.Unmarshal([]byte(clean), &batch); err != nil {
		return draft.Batch{}, fmt.Errorf("decodeBatch: unmarshal JSON: %w", err)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	for i := range batch.Records {
		if batch.Records[i].ID == "" {
			batch.Records[i].ID = "draft-" + strconv.Itoa(i+1)
		}
		if len(batch.Records[i].SourceFiles) == 0 {
			batch.Records[i].SourceFiles = names
		}
	}

	if batch.GeneratedAt.IsZero() {
		batch.GeneratedAt = time.Now().UTC()
	}
	return draft.NormalizeBatch(batch), nil
}

// cleanModelJSON strips Markdown fences and surrounding junk, keeping
// only the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// If there is still junk around the JSON, keep only from the first
	// '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
