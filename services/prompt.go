package services

import (
	"fmt"
	"strings"

	"docrag/models"
)

// DefaultRoleInstruction is the role line used when the caller supplies none.
const DefaultRoleInstruction = "You are a precise technical documentation assistant."

// StructuredFormatInstruction is appended when the caller asked for
// structured output. The completion must answer with a single JSON object.
const StructuredFormatInstruction = `Return your answer as a single JSON object of the form {"answer": "...", "details": ["...", "..."]} with no surrounding prose or code fences.`

// BuildPrompt composes the instruction prompt sent to the completion
// service. Each retrieved chunk is rendered in rank order with a bracketed
// citation marker pairing its sequence number with the source document name
// and position. The instruction header always mandates answering only from
// the supplied context, citing, and admitting missing evidence; those lines
// are the faithfulness contract and are never omitted.
func BuildPrompt(query string, scored []models.ScoredChunk, roleInstruction string) string {
	if roleInstruction == "" {
		roleInstruction = DefaultRoleInstruction
	}

	var sb strings.Builder
	sb.WriteString(roleInstruction)
	sb.WriteString("\n\nAnswer the question using ONLY the context excerpts below.\n")
	sb.WriteString("Attach the bracketed citation marker, e.g. [[1]], directly after each claim it supports.\n")
	if containsTabular(scored) {
		sb.WriteString("Some excerpts contain tabular data: render tabular answers as an explicit markdown table, not prose.\n")
	}
	sb.WriteString("If the context does not contain enough evidence to answer, say so explicitly instead of guessing.\n")

	sb.WriteString("\nContext:\n")
	for i, sc := range scored {
		fmt.Fprintf(&sb, "\n[[%d]] File: %s (pos %d)\n%s\n", i+1, sc.Chunk.SourceDocument, sc.Chunk.Position, sc.Chunk.Text)
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}

func containsTabular(scored []models.ScoredChunk) bool {
	for _, sc := range scored {
		if format, ok := sc.Chunk.Tags["format"]; ok && strings.Contains(strings.ToLower(format), "tab") {
			return true
		}
	}
	return false
}
