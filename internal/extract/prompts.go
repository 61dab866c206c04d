package extract

import "strings"

// buildExtractionPrompt constructs the instruction block for the model.
// The requested JSON shape mirrors draft.Batch exactly so the response
// decodes without an intermediate representation.
func buildExtractionPrompt(files []SourceFile) string {
	var b strings.Builder

	b.WriteString("You are an accounting assistant for an Italian service company.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Interpret EVERY attached document (invoices, receipts) as financial records to import.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object with this shape:\n\n")
	b.WriteString(`{
  "summary": string,
  "warnings": [string],
  "records": [
    {
      "id": string,
      "source_files": [string],
      "resource": "payments" | "expenses",
      "confidence": "high" | "medium" | "low",
      "document_type": "customer_invoice" | "supplier_invoice" | "receipt" | "unknown",
      "rationale": string,
      "counterparty": string,
      "invoice_ref": string or null,
      "amount": number or null,
      "currency": string,
      "document_date": "YYYY-MM-DD" or null,
      "due_date": "YYYY-MM-DD" or null,
      "notes": string,
      "expense_type": string or null,
      "description": string
    }
  ]
}`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Use \"payments\" for invoices the company ISSUED (money in), \"expenses\" for documents it RECEIVED (money out).\n")
	b.WriteString("- If the total amount cannot be determined, set \"amount\" to null. NEVER guess and NEVER use 0 as a placeholder.\n")
	b.WriteString("- If a field cannot be determined, use null or omit it.\n")
	b.WriteString("- Add a warning for every document you could not fully interpret.\n")
	b.WriteString("- Attached files, in order: " + strings.Join(fileNames(files), ", ") + "\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}

func fileNames(files []SourceFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
