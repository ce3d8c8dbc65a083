package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"docrag/models"
)

// ingestConcurrency bounds how many documents are embedded at once. Chunks
// within one document are always embedded and appended sequentially so
// their positions match the chunker's emission order.
const ingestConcurrency = 4

// RAGService interface defines the operations of the answer pipeline.
type RAGService interface {
	IngestDocuments(ctx context.Context, req models.IngestDocumentsRequest) (*models.IngestDocumentsResponse, error)
	Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error)
	ClearIndex(ctx context.Context) *models.ClearResponse
	Stats(ctx context.Context) *models.StatsResponse
}

// PipelineOptions carries the chunking and retrieval budgets.
type PipelineOptions struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	MaxChars     int
	MaxChunks    int
}

// ragServiceImpl holds the dependencies the pipeline needs to do its job.
type ragServiceImpl struct {
	index     *VectorIndex
	embedder  Embedder
	completer Completer
	retriever *Retriever
	opts      PipelineOptions
}

// NewRAGService creates the answer pipeline over an owned index and the
// external embedding and completion clients.
func NewRAGService(index *VectorIndex, embedder Embedder, completer Completer, opts PipelineOptions) RAGService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1200
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}
	if opts.TopK <= 0 {
		opts.TopK = 8
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 12000
	}
	if opts.MaxChunks <= 0 || opts.MaxChunks > DefaultMaxChunks {
		opts.MaxChunks = DefaultMaxChunks
	}
	return &ragServiceImpl{
		index:     index,
		embedder:  embedder,
		completer: completer,
		retriever: NewRetriever(index, embedder),
		opts:      opts,
	}
}

// IngestDocuments extracts, normalizes, chunks, embeds and indexes every
// submitted document. Documents are processed concurrently; a failing
// document or chunk is skipped and itemized while its siblings continue.
func (r *ragServiceImpl) IngestDocuments(ctx context.Context, req models.IngestDocumentsRequest) (*models.IngestDocumentsResponse, error) {
	if len(req.Documents) == 0 {
		return nil, &models.ValidationError{Field: "documents", Reason: "must not be empty"}
	}

	var mu sync.Mutex
	added := 0
	var failures []models.DocumentFailure

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for _, doc := range req.Documents {
		g.Go(func() error {
			count, fails := r.ingestOne(ctx, doc)
			mu.Lock()
			added += count
			failures = append(failures, fails...)
			mu.Unlock()
			return nil
		})
	}
	// Goroutines report per-document failures instead of returning errors,
	// so sibling documents are never aborted.
	_ = g.Wait()

	log.Printf("SERVICE: Ingested %d chunks from %d documents (%d failures)", added, len(req.Documents), len(failures))
	return &models.IngestDocumentsResponse{
		Added:        added,
		TotalIndexed: r.index.Count(),
		Failures:     failures,
	}, nil
}

// ingestOne runs the ingestion path for a single document and returns the
// number of chunks added plus any per-document or per-chunk failures.
func (r *ragServiceImpl) ingestOne(ctx context.Context, doc models.IngestDocument) (int, []models.DocumentFailure) {
	text := doc.Text
	if text == "" && doc.ContentBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(doc.ContentBase64)
		if err != nil {
			return 0, []models.DocumentFailure{{Name: doc.Name, Reason: "invalid base64 content: " + err.Error()}}
		}
		extracted, err := ExtractText(ctx, doc.Name, data, doc.MimeType)
		if err != nil {
			return 0, []models.DocumentFailure{{Name: doc.Name, Reason: err.Error()}}
		}
		text = extracted
	}

	normalized := Normalize(text)
	if normalized == "" {
		return 0, nil
	}

	added := 0
	var failures []models.DocumentFailure
	position := 0
	for chunkText := range Chunks(normalized, r.opts.ChunkSize, r.opts.ChunkOverlap) {
		vector, err := r.embedder.Embed(ctx, chunkText)
		if err != nil {
			failures = append(failures, models.DocumentFailure{
				Name:   doc.Name,
				Reason: fmt.Sprintf("chunk %d: %v", position, err),
			})
			position++
			continue
		}
		r.index.Add(models.Chunk{
			SourceDocument: doc.Name,
			Position:       position,
			Text:           chunkText,
			Vector:         vector,
			Tags:           copyTags(doc.Tags),
		})
		added++
		position++
	}
	return added, failures
}

// Ask answers a query from the index, or from ad-hoc request documents when
// they are supplied. Querying an empty index is a reported error, not a
// crash; a tag filter matching nothing yields an answer with zero sources.
func (r *ragServiceImpl) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	if req.Query == "" {
		return nil, &models.ValidationError{Field: "query", Reason: "must not be empty"}
	}

	maxChunks := req.K
	if maxChunks <= 0 {
		maxChunks = r.opts.TopK
	}
	if maxChunks > r.opts.MaxChunks {
		maxChunks = r.opts.MaxChunks
	}

	var scored []models.ScoredChunk
	if len(req.Documents) > 0 {
		docs := make([]models.Document, 0, len(req.Documents))
		for _, d := range req.Documents {
			docs = append(docs, models.Document{Name: d.Name, MimeType: d.MimeType, Text: d.Text, Tags: d.Tags})
		}
		scored = r.retriever.RetrieveLexical(req.Query, docs, r.opts.ChunkSize, r.opts.ChunkOverlap, r.opts.MaxChars, maxChunks)
	} else {
		if r.index.Count() == 0 {
			return nil, models.ErrEmptyIndex
		}
		var err error
		scored, err = r.retriever.Retrieve(ctx, req.Query, r.opts.MaxChars, maxChunks, BuildTagFilter(req.TagFilters))
		if err != nil {
			return nil, err
		}
	}

	prompt := BuildPrompt(req.Query, scored, "")
	if req.Structured {
		prompt += "\n\n" + StructuredFormatInstruction
	}

	answer, sessionID, err := r.completer.Complete(ctx, req.SessionID, prompt)
	if err != nil {
		return nil, err
	}

	resp := &models.AskResponse{
		Answer:       answer,
		Sources:      buildSources(scored),
		UsedCount:    len(scored),
		TotalIndexed: r.index.Count(),
		SessionID:    sessionID,
	}
	if req.Structured {
		structured, err := ParseStructuredAnswer(answer)
		var malformed *models.MalformedCompletionError
		if errors.As(err, &malformed) {
			// Best-effort wrapper around the raw text; never drop it.
			structured = models.StructuredAnswer{Answer: answer}
			resp.Fallback = true
			log.Printf("SERVICE: Completion output was not valid JSON, returning fallback wrapper")
		} else if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(structured)
		if err != nil {
			return nil, fmt.Errorf("failed to encode structured answer: %w", err)
		}
		resp.Answer = string(encoded)
	}
	return resp, nil
}

// ClearIndex empties the index. Idempotent.
func (r *ragServiceImpl) ClearIndex(_ context.Context) *models.ClearResponse {
	r.index.Clear()
	log.Printf("SERVICE: Cleared index")
	return &models.ClearResponse{TotalIndexed: 0}
}

// Stats reports index occupancy.
func (r *ragServiceImpl) Stats(_ context.Context) *models.StatsResponse {
	return &models.StatsResponse{
		TotalIndexed: r.index.Count(),
		Documents:    r.index.DocumentCounts(),
	}
}

func buildSources(scored []models.ScoredChunk) []models.Source {
	sources := make([]models.Source, 0, len(scored))
	for i, sc := range scored {
		sources = append(sources, models.Source{
			Rank:         i + 1,
			DocumentName: sc.Chunk.SourceDocument,
			Position:     sc.Chunk.Position,
			Score:        sc.Score,
			Preview:      preview(sc.Chunk.Text, 160),
		})
	}
	return sources
}

func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
