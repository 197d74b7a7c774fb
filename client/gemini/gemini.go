package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"staffing/common"
	"staffing/infra/tracing"
	"strings"
	"time"
)

var ErrEmptyCompletion = errors.New("no candidate in completion response")

type Client struct {
	APIKey  string
	Model   string
	BaseURL string

	http *http.Client
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: &tracing.TracingTransport{Transport: http.DefaultTransport}},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model for a single text completion of prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.7, MaxOutputTokens: 800, TopP: 0.95, TopK: 40},
	})
	if err != nil {
		return "", err
	}

	endpoint := c.BaseURL + "/models/" + url.PathEscape(c.Model) + ":generateContent?key=" + url.QueryEscape(c.APIKey)
	respBody, err := common.HttpInvokeJson(ctx, c.http, http.MethodPost, endpoint, nil, string(body))
	if err != nil {
		return "", err
	}

	resp := generateResponse{}
	if err := json.Unmarshal([]byte(respBody), &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
