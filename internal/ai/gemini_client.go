package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// GeminiClient calls the Gemini REST API to generate blog articles. One
// attempt per topic; a failed call is final for that topic in that run.
type GeminiClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

type geminiRequest struct {
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
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (g *GeminiClient) SetBaseURL(url string) {
	g.baseURL = url
}

// GenerateArticle asks Gemini for an Uzbek SEO blog article on the given
// topic and returns the raw HTML text. The prompt requests length, structure
// and keywords; the returned content is not validated against them.
func (g *GeminiClient) GenerateArticle(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("empty topic")
	}

	text, err := g.callGeminiAPI(ctx, BlogPrompt(topic))
	if err != nil {
		return "", fmt.Errorf("error calling Gemini API: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty generation result")
	}

	return text, nil
}

func (g *GeminiClient) callGeminiAPI(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{
				Text: prompt,
			}},
		}},
	}

	var resp geminiResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&resp).
		Post(url)

	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if !httpResp.IsSuccess() {
		return "", fmt.Errorf("unexpected status code %d", httpResp.StatusCode())
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
