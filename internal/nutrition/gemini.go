package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel   = "gemini-2.0-flash-001"
	requestTimeout       = 60 * time.Second
)

// Structs for the Gemini generateContent request/response. Internal to this
// package; only the extracted text leaves it.

type geminiPayload struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiClient performs one blocking generateContent call per invocation.
// There is no retry here: a failed call is reported once and the caller
// decides what to do. A client-side limiter keeps bursts of plan requests
// within the API quota.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   defaultGeminiModel,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

func (g *GeminiClient) WithModel(model string) *GeminiClient {
	g.model = model
	return g
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (g *GeminiClient) WithBaseURL(url string) *GeminiClient {
	g.baseURL = url
	return g
}

// GenerateContent sends the prompt and returns the raw text of the first
// candidate. Every failure mode (missing key, transport, non-200 status,
// empty reply) comes back as a ModelCallError.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", &ModelCallError{Err: fmt.Errorf("GEMINI_API_KEY is not configured")}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", &ModelCallError{Err: err}
	}

	payload := geminiPayload{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ModelCallError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &ModelCallError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	log.Info().Str("model", g.model).Msg("Calling Gemini API")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &ModelCallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ModelCallError{Err: fmt.Errorf("API returned %s: %s", resp.Status, errBody)}
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ModelCallError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == "" {
		return "", &ModelCallError{Err: fmt.Errorf("no usable text in Gemini response")}
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
