package models

// DocumentFailure reports one document (or one of its chunks) that could not
// be ingested. Partial ingestion is reported, never silently dropped.
type DocumentFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestDocumentsResponse is the result of an ingestion request.
type IngestDocumentsResponse struct {
	Added        int               `json:"added"`
	TotalIndexed int               `json:"totalIndexed"`
	Failures     []DocumentFailure `json:"failures,omitempty"`
}

// Source is one citation attached to an answer, in rank order.
type Source struct {
	Rank         int     `json:"rank"`
	DocumentName string  `json:"documentName"`
	Position     int     `json:"position"`
	Score        float64 `json:"score"`
	Preview      string  `json:"preview"`
}

// AskResponse is the result of a query. Fallback is set when structured
// output was requested but the completion could not be parsed and the raw
// text was wrapped instead.
type AskResponse struct {
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	UsedCount    int      `json:"usedCount"`
	TotalIndexed int      `json:"totalIndexed"`
	SessionID    string   `json:"sessionID,omitempty"`
	Fallback     bool     `json:"fallback,omitempty"`
}

// StructuredAnswer is the JSON shape requested from the completion service
// when AskRequest.Structured is set.
type StructuredAnswer struct {
	Answer  string   `json:"answer"`
	Details []string `json:"details,omitempty"`
}

// StatsResponse reports index occupancy, overall and per document.
type StatsResponse struct {
	TotalIndexed int            `json:"totalIndexed"`
	Documents    map[string]int `json:"documents"`
}

// ClearResponse is the result of clearing the index.
type ClearResponse struct {
	TotalIndexed int `json:"totalIndexed"`
}
