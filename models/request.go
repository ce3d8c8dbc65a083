package models

// IngestDocument is one document submitted for ingestion. Either Text or
// ContentBase64 must be set; binary content is routed through the extractor
// based on MimeType.
type IngestDocument struct {
	Name          string            `json:"name"`
	Text          string            `json:"text,omitempty"`
	ContentBase64 string            `json:"contentBase64,omitempty"`
	MimeType      string            `json:"mimeType,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// IngestDocumentsRequest is the body of POST /api/v1/documents.
type IngestDocumentsRequest struct {
	Documents []IngestDocument `json:"documents"`
}

// AskRequest is the body of POST /api/v1/query. When Documents is non-empty
// the query is answered over those ad-hoc documents with lexical scoring
// instead of the persistent index.
type AskRequest struct {
	Query      string            `json:"query"`
	K          int               `json:"k,omitempty"`
	TagFilters map[string]string `json:"tagFilters,omitempty"`
	SessionID  string            `json:"sessionID,omitempty"`
	Structured bool              `json:"structured,omitempty"`
	Documents  []IngestDocument  `json:"documents,omitempty"`
}
