package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docrag/models"
)

// DefaultMaxChunks is the hard cap on chunks pulled into a single prompt.
const DefaultMaxChunks = 50

// Retriever ranks indexed chunks against a query and enforces the prompt
// budget. It owns no state beyond its collaborators.
type Retriever struct {
	index    *VectorIndex
	embedder Embedder
}

// NewRetriever creates a retriever over the given index and embedder.
func NewRetriever(index *VectorIndex, embedder Embedder) *Retriever {
	return &Retriever{index: index, embedder: embedder}
}

// Retrieve embeds the query, ranks the index by cosine similarity under the
// optional tag filter, and returns the best chunks within the character and
// count budgets.
func (r *Retriever) Retrieve(ctx context.Context, query string, maxChars, maxChunks int, filter TagFilter) ([]models.ScoredChunk, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	ranked := r.index.Search(queryVec, maxChunks, filter)
	return selectWithinBudget(ranked, maxChars, maxChunks), nil
}

// RetrieveLexical scores ad-hoc documents that were never indexed: each
// document is normalized and chunked in-request, scored by lexical overlap
// with the query, and the ranked result is budget-limited the same way as
// embedding retrieval. Ties keep chunk order, so results are deterministic.
func (r *Retriever) RetrieveLexical(query string, docs []models.Document, chunkSize, overlap, maxChars, maxChunks int) []models.ScoredChunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		pos := 0
		for text := range Chunks(Normalize(doc.Text), chunkSize, overlap) {
			chunks = append(chunks, models.Chunk{
				SourceDocument: doc.Name,
				Position:       pos,
				Text:           text,
				Tags:           doc.Tags,
			})
			pos++
		}
	}
	tokens := queryTokens(query)
	scored := make([]models.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, models.ScoredChunk{Chunk: c, Score: lexicalScore(tokens, c.Text)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	return selectWithinBudget(scored, maxChars, maxChunks)
}

// queryTokens splits the normalized query on whitespace and discards tokens
// shorter than 2 characters.
func queryTokens(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(Normalize(query))) {
		if len(t) >= 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// lexicalScore counts case-insensitive substring occurrences of each query
// token, weighting tokens of 5+ characters 3x, and adds a density bonus of
// min(len/500, 5) so longer, more substantive chunks win ties against
// fragments.
func lexicalScore(tokens []string, chunkText string) float64 {
	lower := strings.ToLower(chunkText)
	var score float64
	for _, t := range tokens {
		occurrences := strings.Count(lower, t)
		if occurrences == 0 {
			continue
		}
		weight := 1.0
		if len(t) >= 5 {
			weight = 3.0
		}
		score += float64(occurrences) * weight
	}
	density := float64(len(chunkText)) / 500.0
	if density > 5 {
		density = 5
	}
	return score + density
}

// selectWithinBudget walks the ranked list in order, accumulating chunks
// while the running character total stays within maxChars, and stops at the
// first chunk that would exceed either budget.
func selectWithinBudget(ranked []models.ScoredChunk, maxChars, maxChunks int) []models.ScoredChunk {
	selected := make([]models.ScoredChunk, 0, len(ranked))
	total := 0
	for _, sc := range ranked {
		if len(selected) >= maxChunks {
			break
		}
		if maxChars > 0 && total+len(sc.Chunk.Text) > maxChars {
			break
		}
		total += len(sc.Chunk.Text)
		selected = append(selected, sc)
	}
	return selected
}

// BuildTagFilter turns the request's tag filters into a predicate: every
// requested key must be present with a value containing the requested
// substring, case-insensitively. Empty filters match everything.
func BuildTagFilter(filters map[string]string) TagFilter {
	if len(filters) == 0 {
		return nil
	}
	return func(tags map[string]string) bool {
		for key, want := range filters {
			got, ok := tags[key]
			if !ok || !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
				return false
			}
		}
		return true
	}
}
