package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docrag/models"
	"docrag/services"
)

// RAGController handles the HTTP requests for the RAG API. It depends on
// the RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController is a constructor function that creates a new RAGController.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// IngestDocuments is the Gin handler for POST /api/v1/documents.
func (c *RAGController) IngestDocuments(ctx *gin.Context) {
	var req models.IngestDocumentsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorBody("validation", "Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.ragService.IngestDocuments(ctx.Request.Context(), req)
	if err != nil {
		status, body := mapError(err)
		ctx.JSON(status, body)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Ask is the Gin handler for POST /api/v1/query.
func (c *RAGController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorBody("validation", "Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.ragService.Ask(ctx.Request.Context(), req)
	if err != nil {
		status, body := mapError(err)
		ctx.JSON(status, body)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ClearIndex is the Gin handler for DELETE /api/v1/documents.
func (c *RAGController) ClearIndex(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.ragService.ClearIndex(ctx.Request.Context()))
}

// Stats is the Gin handler for GET /api/v1/stats.
func (c *RAGController) Stats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.ragService.Stats(ctx.Request.Context()))
}

// mapError turns the service error taxonomy into an HTTP status and a
// machine-readable body: validation problems and empty-index queries are
// the caller's to fix, upstream service failures surface as bad gateway.
func mapError(err error) (int, gin.H) {
	var validation *models.ValidationError
	var embedding *models.EmbeddingServiceError
	var completion *models.CompletionServiceError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorBody("validation", err.Error())
	case errors.Is(err, models.ErrEmptyIndex):
		return http.StatusBadRequest, errorBody("empty_index", err.Error())
	case errors.As(err, &embedding):
		return http.StatusBadGateway, errorBody("embedding_service", err.Error())
	case errors.As(err, &completion):
		return http.StatusBadGateway, errorBody("completion_service", err.Error())
	default:
		return http.StatusInternalServerError, errorBody("internal", err.Error())
	}
}

func errorBody(kind, message string) gin.H {
	return gin.H{"kind": kind, "error": message}
}
