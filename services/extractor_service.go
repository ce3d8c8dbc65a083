package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"docrag/models"
)

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	if key := os.Getenv("UNIDOC_LICENSE_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			log.Printf("WARN: Failed to set Unidoc license key: %v. PDF processing will fail.", err)
		}
	}
}

// ExtractText converts a document's raw bytes into plain text based on the
// declared media type. Unsupported types yield an empty string and no
// error; only genuinely failed extraction (corrupt input, I/O) returns a
// *models.ExtractionError.
func ExtractText(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	switch normalizeMimeType(mimeType) {
	case "text/plain", "text/markdown", "":
		return string(data), nil
	case "application/pdf":
		text, err := extractTextFromPDF(data)
		if err != nil {
			return "", &models.ExtractionError{Document: name, Err: err}
		}
		return text, nil
	case "text/csv":
		text, err := extractTextFromCSV(ctx, data)
		if err != nil {
			return "", &models.ExtractionError{Document: name, Err: err}
		}
		return text, nil
	default:
		return "", nil
	}
}

func normalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// extractTextFromPDF uses UniPDF to get all text from a PDF document.
func extractTextFromPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n") // Add space between pages
	}

	return sb.String(), nil
}

// extractTextFromCSV flattens a CSV document into row-per-line text.
func extractTextFromCSV(ctx context.Context, data []byte) (string, error) {
	docs, err := documentloaders.NewCSV(bytes.NewReader(data)).Load(ctx)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("csv contained no rows")
	}
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
