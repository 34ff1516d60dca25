// Package aiclient реализует клиент внешнего генеративного API.
// Клиент передаёт части запроса без изменений и запрашивает
// JSON-ответ модели.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIURL = "https://generativelanguage.googleapis.com/v1beta"

// Client — клиент генеративного API.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент. Пустой baseURL заменяется боевым адресом.
func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		apiURL:     baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// GenerateContent отправляет системную инструкцию и части содержимого
// модели и возвращает текст первого кандидата. Ошибки апстрима
// возвращаются как *APIError с его HTTP-статусом.
func (c *Client) GenerateContent(ctx context.Context, systemInstruction string, parts []Part) (string, error) {
	const op = "aiclient.GenerateContent"

	reqBody := generateRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
		},
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &Content{Parts: []Part{{Text: systemInstruction}}}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if genResp.Error != nil {
			msg = genResp.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &APIError{StatusCode: http.StatusInternalServerError, Message: "empty response from model"}
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
