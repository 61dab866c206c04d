package draft

import "strings"

// ProvenanceNote marks records created from AI-extracted drafts so they
// stay traceable after confirmation.
const ProvenanceNote = "Importato dalla chat AI fatture"

// BuildNotes derives the free-text annotation attached to the created
// record: trimmed user notes, a due-date line, and the provenance
// marker, newline separated. The marker is always present, so the
// result is never empty.
func BuildNotes(r Record) string {
	var lines []string
	if notes := strings.TrimSpace(r.Notes); notes != "" {
		lines = append(lines, notes)
	}
	if r.DueDate != "" {
		lines = append(lines, "Scadenza documento: "+r.DueDate)
	}
	lines = append(lines, ProvenanceNote)
	return strings.Join(lines, "\n")
}
