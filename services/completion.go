package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"docrag/models"
)

// Completer sends an assembled prompt to an LLM and returns the generated
// text. A session id carries conversational state between calls; passing an
// empty or unknown id starts a fresh session and returns its id. The core
// never retries a failed completion; that policy belongs to the caller.
type Completer interface {
	Complete(ctx context.Context, sessionID, prompt string) (answer, session string, err error)
}

// GeminiCompleter completes prompts through Gemini chat sessions, one
// session per conversation id.
type GeminiCompleter struct {
	client  *genai.Client
	model   string
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*genai.Chat
}

// NewGeminiCompleter creates a completion client with a per-call timeout.
func NewGeminiCompleter(client *genai.Client, model string, timeout time.Duration) *GeminiCompleter {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &GeminiCompleter{
		client:   client,
		model:    model,
		timeout:  timeout,
		sessions: make(map[string]*genai.Chat),
	}
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, sessionID, prompt string) (string, string, error) {
	session, sessionID, err := g.session(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := session.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", "", &models.CompletionServiceError{Err: err}
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", "", &models.CompletionServiceError{Err: fmt.Errorf("gemini returned no candidates")}
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), sessionID, nil
}

// session returns the chat for sessionID, creating a new session (and id)
// when the id is empty or unknown, e.g. after a restart.
func (g *GeminiCompleter) session(ctx context.Context, sessionID string) (*genai.Chat, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if sessionID != "" {
		if session, ok := g.sessions[sessionID]; ok {
			return session, sessionID, nil
		}
	}
	session, err := g.client.Chats.Create(ctx, g.model, nil, nil)
	if err != nil {
		return nil, "", &models.CompletionServiceError{Err: fmt.Errorf("could not start chat session: %w", err)}
	}
	sessionID = uuid.New().String()
	g.sessions[sessionID] = session
	return session, sessionID, nil
}

// ParseStructuredAnswer decodes completion output that was requested in the
// StructuredFormatInstruction shape. Code fences and surrounding prose are
// tolerated; anything that still fails to decode is reported as a
// *models.MalformedCompletionError carrying the raw text.
func ParseStructuredAnswer(raw string) (models.StructuredAnswer, error) {
	candidate := raw
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			candidate = candidate[start : end+1]
		}
	}
	var out models.StructuredAnswer
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return models.StructuredAnswer{}, &models.MalformedCompletionError{Raw: raw, Err: err}
	}
	if out.Answer == "" {
		return models.StructuredAnswer{}, &models.MalformedCompletionError{Raw: raw, Err: fmt.Errorf("missing answer field")}
	}
	return out, nil
}
