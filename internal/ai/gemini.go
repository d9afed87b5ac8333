package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cchalm/sorabot/internal/chat"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.0-flash"

	// GeminiSourceName is the source tag attached to turns produced by Gemini
	GeminiSourceName = "Google Gemini"

	// DefaultMaxResponseSize bounds how much of a response body is read
	DefaultMaxResponseSize int64 = 10 * 1024 * 1024
)

// Gemini implements Provider for the Gemini generateContent API. Credentials are the responsibility of the HTTP
// client's transport: either an API key query parameter (see transport.WithAPIKey) or an OAuth bearer token
type Gemini struct {
	httpClient      *http.Client
	baseURL         string
	model           string
	maxResponseSize int64
}

func NewGemini(httpClient *http.Client, baseURL string, model string) *Gemini {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		httpClient:      httpClient,
		baseURL:         strings.TrimRight(baseURL, "/"),
		model:           model,
		maxResponseSize: DefaultMaxResponseSize,
	}
}

func (g *Gemini) Name() string {
	return GeminiSourceName
}

func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

// Generate sends a non-streaming generateContent request and returns the text of the first candidate
func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(buildGeminiRequest(req))
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	// One byte past the limit distinguishes an oversized body from one that is exactly at it
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, g.maxResponseSize+1))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(respBody)) > g.maxResponseSize {
		return Response{}, fmt.Errorf("response exceeded maximum size of %d bytes", g.maxResponseSize)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return Response{}, parseGeminiError(httpResp.StatusCode, respBody)
	}

	var wireResp geminiResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return Response{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return wireResp.firstCandidate()
}

func buildGeminiRequest(req Request) geminiRequest {
	wireReq := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Generation.Temperature,
			TopK:            req.Generation.TopK,
			TopP:            req.Generation.TopP,
			MaxOutputTokens: req.Generation.MaxOutputTokens,
		},
	}
	if req.SystemInstruction != "" {
		wireReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	for _, msg := range req.Messages {
		wireReq.Contents = append(wireReq.Contents, geminiContent{
			Role:  geminiRole(msg.Role),
			Parts: []geminiPart{{Text: msg.Text}},
		})
	}
	for _, setting := range req.SafetySettings {
		wireReq.SafetySettings = append(wireReq.SafetySettings, geminiSafetySetting(setting))
	}
	return wireReq
}

// geminiRole maps a chat role to Gemini's role names, which call the assistant "model"
func geminiRole(role chat.Role) string {
	if role == chat.RoleAssistant {
		return "model"
	}
	return "user"
}

func parseGeminiError(statusCode int, body []byte) error {
	statusErr := &StatusError{StatusCode: statusCode}

	var wireErr geminiErrorResponse
	if err := json.Unmarshal(body, &wireErr); err != nil {
		// Not every error comes from the API itself, e.g. a proxy in between, so fall back to the raw body
		statusErr.Message = strings.TrimSpace(string(body))
		return statusErr
	}
	statusErr.Status = wireErr.Error.Status
	statusErr.Message = wireErr.Error.Message
	for _, detail := range wireErr.Error.Details {
		if detail.Reason != "" {
			statusErr.Reason = detail.Reason
			break
		}
	}
	return statusErr
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	SafetySettings    []geminiSafetySetting  `json:"safetySettings,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// firstCandidate extracts the text of the first candidate, joining its parts
func (r geminiResponse) firstCandidate() (Response, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return Response{}, fmt.Errorf("%w: prompt blocked (%s)", ErrNoCandidates, r.PromptFeedback.BlockReason)
		}
		return Response{}, ErrNoCandidates
	}

	var text strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return Response{}, fmt.Errorf("%w: first candidate has no text (finish reason %s)",
			ErrNoCandidates, r.Candidates[0].FinishReason)
	}
	return Response{Text: text.String()}, nil
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type   string `json:"@type"`
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}
