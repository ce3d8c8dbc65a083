package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/models"
)

// fakeRAGService returns canned results so handler behavior can be tested
// without real collaborators.
type fakeRAGService struct {
	ingestResp *models.IngestDocumentsResponse
	askResp    *models.AskResponse
	err        error
}

func (f *fakeRAGService) IngestDocuments(_ context.Context, req models.IngestDocumentsRequest) (*models.IngestDocumentsResponse, error) {
	if len(req.Documents) == 0 {
		return nil, &models.ValidationError{Field: "documents", Reason: "must not be empty"}
	}
	return f.ingestResp, f.err
}

func (f *fakeRAGService) Ask(_ context.Context, req models.AskRequest) (*models.AskResponse, error) {
	if req.Query == "" {
		return nil, &models.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.askResp, nil
}

func (f *fakeRAGService) ClearIndex(_ context.Context) *models.ClearResponse {
	return &models.ClearResponse{TotalIndexed: 0}
}

func (f *fakeRAGService) Stats(_ context.Context) *models.StatsResponse {
	return &models.StatsResponse{TotalIndexed: 2, Documents: map[string]int{"a.txt": 2}}
}

func setupRouter(svc *fakeRAGService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewRAGController(svc)
	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/documents", ctrl.IngestDocuments)
	api.DELETE("/documents", ctrl.ClearIndex)
	api.POST("/query", ctrl.Ask)
	api.GET("/stats", ctrl.Stats)
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIngestDocuments_Success(t *testing.T) {
	router := setupRouter(&fakeRAGService{
		ingestResp: &models.IngestDocumentsResponse{Added: 3, TotalIndexed: 3},
	})

	w := perform(router, http.MethodPost, "/api/v1/documents",
		`{"documents": [{"name": "spec.txt", "text": "relay X1 at 24VDC"}]}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"added":3`)
	assert.Contains(t, w.Body.String(), `"totalIndexed":3`)
}

func TestIngestDocuments_EmptyList(t *testing.T) {
	router := setupRouter(&fakeRAGService{})

	w := perform(router, http.MethodPost, "/api/v1/documents", `{"documents": []}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"validation"`)
}

func TestIngestDocuments_MalformedBody(t *testing.T) {
	router := setupRouter(&fakeRAGService{})
	w := perform(router, http.MethodPost, "/api/v1/documents", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsk_Success(t *testing.T) {
	router := setupRouter(&fakeRAGService{
		askResp: &models.AskResponse{
			Answer:       "The relay operates at 24VDC [[1]].",
			Sources:      []models.Source{{Rank: 1, DocumentName: "spec.txt", Position: 0, Score: 0.92, Preview: "The brake relay X1..."}},
			UsedCount:    1,
			TotalIndexed: 1,
		},
	})

	w := perform(router, http.MethodPost, "/api/v1/query", `{"query": "voltage of relay X1?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "24VDC")
	assert.Contains(t, w.Body.String(), `"documentName":"spec.txt"`)
}

func TestAsk_MissingQuery(t *testing.T) {
	router := setupRouter(&fakeRAGService{})
	w := perform(router, http.MethodPost, "/api/v1/query", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"validation"`)
}

func TestAsk_EmptyIndex(t *testing.T) {
	router := setupRouter(&fakeRAGService{err: models.ErrEmptyIndex})
	w := perform(router, http.MethodPost, "/api/v1/query", `{"query": "anything"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"empty_index"`)
}

func TestAsk_UpstreamFailuresMapToBadGateway(t *testing.T) {
	router := setupRouter(&fakeRAGService{err: &models.CompletionServiceError{Status: 503, Body: "overloaded"}})
	w := perform(router, http.MethodPost, "/api/v1/query", `{"query": "anything"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"completion_service"`)

	router = setupRouter(&fakeRAGService{err: &models.EmbeddingServiceError{Status: 500, Body: "down"}})
	w = perform(router, http.MethodPost, "/api/v1/query", `{"query": "anything"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"embedding_service"`)
}

func TestClearIndex(t *testing.T) {
	router := setupRouter(&fakeRAGService{})
	w := perform(router, http.MethodDelete, "/api/v1/documents", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalIndexed":0`)
}

func TestStats(t *testing.T) {
	router := setupRouter(&fakeRAGService{})
	w := perform(router, http.MethodGet, "/api/v1/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalIndexed":2`)
	assert.Contains(t, w.Body.String(), `"a.txt":2`)
}
