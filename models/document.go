package models

// Document is a named unit of ingested content. Names are not guaranteed
// unique; ingesting the same name twice appends new, independent chunks.
type Document struct {
	Name     string            `json:"name"`
	MimeType string            `json:"mimeType,omitempty"`
	Text     string            `json:"text"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Chunk is a contiguous slice of a document's normalized text, the atomic
// unit of embedding and retrieval. Position values for a document are
// contiguous from 0 in chunker emission order and never change afterwards.
type Chunk struct {
	ID             int64             `json:"id"`
	SourceDocument string            `json:"sourceDocument"`
	Position       int               `json:"position"`
	Text           string            `json:"text"`
	Vector         []float32         `json:"-"`
	Tags           map[string]string `json:"tags,omitempty"`
}

// ScoredChunk pairs a chunk with its relevance score for a single query.
// Scored chunks are ephemeral and discarded once the response is sent.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
