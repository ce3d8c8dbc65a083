package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText(context.Background(), "notes.txt", []byte("plain content"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "plain content", text)
}

func TestExtractText_MarkdownAndMissingType(t *testing.T) {
	text, err := ExtractText(context.Background(), "notes.md", []byte("# heading"), "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, "# heading", text)

	text, err = ExtractText(context.Background(), "mystery", []byte("raw"), "")
	require.NoError(t, err)
	assert.Equal(t, "raw", text)
}

func TestExtractText_MimeParameterIgnored(t *testing.T) {
	text, err := ExtractText(context.Background(), "notes.txt", []byte("content"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "content", text)
}

func TestExtractText_UnsupportedTypeYieldsEmpty(t *testing.T) {
	// Unsupported media types are skipped silently, not failed.
	text, err := ExtractText(context.Background(), "archive.zip", []byte{0x50, 0x4b}, "application/zip")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_CSV(t *testing.T) {
	csv := "component,voltage\nX1,24VDC\nX2,12VDC\n"
	text, err := ExtractText(context.Background(), "sheet.csv", []byte(csv), "text/csv")
	require.NoError(t, err)
	assert.Contains(t, text, "X1")
	assert.Contains(t, text, "24VDC")
	assert.Contains(t, text, "X2")
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText(context.Background(), "broken.pdf", []byte("not a pdf"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}
