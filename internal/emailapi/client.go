// Package emailapi реализует клиент внешнего транзакционного email-сервиса.
package emailapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client — клиент HTTP API отправки писем.
type Client struct {
	apiKey     string
	apiURL     string
	from       string
	httpClient *http.Client
}

// SendRequest — полезная нагрузка отправки одного письма.
type SendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewClient создаёт новый клиент email-сервиса.
func NewClient(apiKey, apiURL, from string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// From возвращает настроенный адрес отправителя.
func (c *Client) From() string {
	return c.from
}

// Send отправляет письмо через внешний API. Повторных попыток нет:
// ошибка логируется вызывающей стороной и показывается пользователю
// обезличенным сообщением.
func (c *Client) Send(to, subject, html string) error {
	const op = "emailapi.Send"

	payload := SendRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL+"/emails", &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, detail)
	}
	return nil
}
