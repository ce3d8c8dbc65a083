package services

import (
	"math"
	"sort"
	"sync"

	"docrag/models"
)

// cosineEpsilon guards the cosine denominator so an all-zero vector (a
// degraded embedding) scores 0 instead of dividing by zero.
const cosineEpsilon = 1e-12

// TagFilter restricts a search to chunks whose tags satisfy the predicate.
// A nil filter matches every chunk.
type TagFilter func(tags map[string]string) bool

// VectorIndex is an owned, memory-resident collection of chunks supporting
// concurrent append and similarity search. There is no per-chunk deletion
// and no update in place; the only removal is a full Clear.
type VectorIndex struct {
	mu     sync.RWMutex
	chunks []models.Chunk
	nextID int64
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Add assigns the next id to the chunk and appends it. Id assignment and
// storage happen under one lock, so a concurrent Search sees either the
// pre- or post-add state, never a torn record.
func (v *VectorIndex) Add(chunk models.Chunk) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	chunk.ID = v.nextID
	v.nextID++
	v.chunks = append(v.chunks, chunk)
	return chunk.ID
}

// Search scores every stored chunk that satisfies filter against queryVec
// by cosine similarity and returns the top k, sorted non-increasing. Ties
// keep insertion order. Fewer than k matches returns all of them.
func (v *VectorIndex) Search(queryVec []float32, k int, filter TagFilter) []models.ScoredChunk {
	v.mu.RLock()
	defer v.mu.RUnlock()
	scored := make([]models.ScoredChunk, 0, len(v.chunks))
	for _, c := range v.chunks {
		if filter != nil && !filter(c.Tags) {
			continue
		}
		scored = append(scored, models.ScoredChunk{Chunk: c, Score: CosineSimilarity(queryVec, c.Vector)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k >= 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// Clear empties the index. The id counter is reset as well; citations
// issued before a clear are invalid afterwards.
func (v *VectorIndex) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chunks = nil
	v.nextID = 0
}

// Count reports the number of indexed chunks.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chunks)
}

// DocumentCounts reports indexed chunk counts per source document name.
func (v *VectorIndex) DocumentCounts() map[string]int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	counts := make(map[string]int)
	for _, c := range v.chunks {
		counts[c.SourceDocument]++
	}
	return counts
}

// CosineSimilarity computes dot(a,b) / (||a||*||b|| + epsilon). Vectors of
// different lengths are compared over their common prefix.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}
