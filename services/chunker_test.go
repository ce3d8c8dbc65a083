package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_EmptyInput(t *testing.T) {
	assert.Empty(t, ChunkText("", 1200, 200), "empty text must yield zero chunks, not one empty chunk")
}

func TestChunkText_ShorterThanSize(t *testing.T) {
	text := "The brake relay X1 operates at 24VDC. See panel 3001 for wiring."
	chunks := ChunkText(text, 1200, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkText_StrideAndOverlap(t *testing.T) {
	text := strings.Repeat("x", 3000)
	chunks := ChunkText(text, 1200, 200)
	require.Len(t, chunks, 3)

	// Each chunk starts exactly size-overlap after the previous one.
	assert.Equal(t, text[0:1200], chunks[0])
	assert.Equal(t, text[1000:2200], chunks[1])
	assert.Equal(t, text[2000:3000], chunks[2])
}

func TestChunkText_Coverage(t *testing.T) {
	// Concatenating chunks at the nominal stride reconstructs the input.
	text := "abcdefghijklmnopqrstuvwxyz0123456789"
	size, overlap := 10, 3
	stride := size - overlap

	chunks := ChunkText(text, size, overlap)
	require.NotEmpty(t, chunks)

	var sb strings.Builder
	for i, c := range chunks {
		if i == len(chunks)-1 {
			sb.WriteString(c)
		} else {
			sb.WriteString(c[:stride])
		}
	}
	assert.Equal(t, text, sb.String())

	// The final chunk ends at the end of the input.
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))
}

func TestChunkText_ZeroOverlap(t *testing.T) {
	text := strings.Repeat("ab", 50)
	chunks := ChunkText(text, 40, 0)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunks_Restartable(t *testing.T) {
	text := strings.Repeat("y", 500)
	seq := Chunks(text, 100, 20)

	first := make([]string, 0)
	for c := range seq {
		first = append(first, c)
	}
	second := make([]string, 0)
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second, "sequence must be restartable")
}

func TestChunks_EarlyStop(t *testing.T) {
	text := strings.Repeat("z", 5000)
	count := 0
	for range Chunks(text, 100, 0) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}
