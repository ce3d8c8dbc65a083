package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"docrag/config"
	"docrag/controller"
	"docrag/services"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// Create Gemini client for completion (and embedding when configured)
	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	var embedder services.Embedder
	switch cfg.Embedder.Type {
	case "gemini":
		embedder = services.NewGeminiEmbedder(geminiClient, cfg.Embedder.Gemini.Model)
	default:
		httpClient := &http.Client{
			Timeout: time.Duration(cfg.Embedder.Ollama.TimeoutSecs) * time.Second,
		}
		embedder = services.NewOllamaEmbedder(httpClient, cfg.Embedder.Ollama.BaseURL, cfg.Embedder.Ollama.Model,
			time.Duration(cfg.Embedder.Ollama.TimeoutSecs)*time.Second)
	}

	completer := services.NewGeminiCompleter(geminiClient, cfg.Completion.Model,
		time.Duration(cfg.Completion.TimeoutSecs)*time.Second)

	index := services.NewVectorIndex()
	ragService := services.NewRAGService(index, embedder, completer, services.PipelineOptions{
		ChunkSize:    cfg.Chunker.Size,
		ChunkOverlap: cfg.Chunker.Overlap,
		TopK:         cfg.Retrieval.TopK,
		MaxChars:     cfg.Retrieval.MaxChars,
		MaxChunks:    cfg.Retrieval.MaxChunks,
	})
	ragController := controller.NewRAGController(ragService)

	// Optional docs-directory ingestion source
	if cfg.Watcher.Enabled {
		indexing := services.NewFileIndexingService(ragService)
		watchCtx := context.Background()
		go func() {
			indexing.ScanAndIndexDirectory(watchCtx, cfg.Watcher.Dir)
			indexing.WatchDirectory(watchCtx, cfg.Watcher.Dir)
		}()
	}

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware for testing
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Add health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "healthy",
			"service":      "RAG API",
			"totalIndexed": index.Count(),
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/documents", ragController.IngestDocuments) // Ingest documents
		apiV1.DELETE("/documents", ragController.ClearIndex)    // Clear the index
		apiV1.POST("/query", ragController.Ask)                 // Ask a question
		apiV1.GET("/stats", ragController.Stats)                // Index statistics
	}

	// Start the Server
	port := cfg.Server.Port
	log.Printf("Go Gin backend server starting on http://localhost:%s", port)
	log.Printf("Health check available at: http://localhost:%s/health", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
