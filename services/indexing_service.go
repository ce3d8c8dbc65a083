package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"docrag/models"
)

// FileIndexingService feeds documents from a local directory into the
// ingestion path: a full scan at startup, then live re-ingestion through a
// file watcher. The index itself is append-only, so the service tracks
// content hashes to avoid re-ingesting files that have not changed within
// this process lifetime.
type FileIndexingService struct {
	ragService RAGService

	mu     sync.Mutex
	hashes map[string]string
}

// NewFileIndexingService creates a new indexing service.
func NewFileIndexingService(ragService RAGService) *FileIndexingService {
	return &FileIndexingService{
		ragService: ragService,
		hashes:     make(map[string]string),
	}
}

// ScanAndIndexDirectory ingests every supported file under dirPath.
func (s *FileIndexingService) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting directory scan for: %s", dirPath)

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isSupportedFile(path) {
			s.ingestFile(ctx, path)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}
	log.Println("INDEXER: Directory scan finished.")
}

// WatchDirectory starts a long-running process to ingest file changes in
// real-time. Blocks until ctx is cancelled. Removed files stay in the
// index; there is no per-document deletion.
func (s *FileIndexingService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) {
					continue
				}
				// Many editors write via a temp file plus rename, which
				// fires multiple events; Create and Write are handled the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Ingesting...", event.Name)
					s.ingestFile(ctx, event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

// ingestFile submits one file to the pipeline unless its content hash is
// already known.
func (s *FileIndexingService) ingestFile(ctx context.Context, path string) {
	hash, err := calculateFileHash(path)
	if err != nil {
		log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
		return
	}
	s.mu.Lock()
	if s.hashes[path] == hash {
		s.mu.Unlock()
		return
	}
	s.hashes[path] = hash
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not read file %s: %v", path, err)
		return
	}

	doc := models.IngestDocument{
		Name:     filepath.Base(path),
		MimeType: mimeTypeForFile(path),
		Tags:     map[string]string{"source": "watcher"},
	}
	if strings.HasPrefix(doc.MimeType, "text/") && doc.MimeType != "text/csv" {
		doc.Text = string(data)
	} else {
		doc.ContentBase64 = base64.StdEncoding.EncodeToString(data)
	}

	result, err := s.ragService.IngestDocuments(ctx, models.IngestDocumentsRequest{Documents: []models.IngestDocument{doc}})
	if err != nil {
		log.Printf("INDEXER ERROR: Failed to ingest %s: %v", path, err)
		return
	}
	if len(result.Failures) > 0 {
		log.Printf("INDEXER WARN: Ingested %s with %d failures", path, len(result.Failures))
	}
	log.Printf("INDEXER: Ingested %s (%d chunks, %d total)", path, result.Added, result.TotalIndexed)
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf", ".csv":
		return true
	default:
		return false
	}
}

func mimeTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	default:
		return "text/plain"
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
