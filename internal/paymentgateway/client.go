// Package paymentgateway реализует HTTP-клиент платёжного шлюза:
// инициализация заказа с получением ссылки на оплату и управление
// рекуррентными списаниями. Подлинность уведомлений шлюза проверяется
// подписью HMAC-SHA256 на общем секрете.
package paymentgateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client — клиент API платёжного шлюза.
type Client struct {
	key        string
	secret     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент шлюза.
func NewClient(key, secret, apiURL string) *Client {
	return &Client{
		key:        key,
		secret:     secret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.key + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrder инициализирует заказ и возвращает ссылку на страницу оплаты.
func (c *Client) CreateOrder(reqParams CreateOrderRequest) (*CreateOrderResponse, []byte, error) {
	const op = "paymentgateway.CreateOrder"

	req, err := c.newRequest(http.MethodPost, "/orders", reqParams)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var buf bytes.Buffer
	var orderResp CreateOrderResponse
	if err := json.NewDecoder(io.TeeReader(resp.Body, &buf)).Decode(&orderResp); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if orderResp.Code != 0 {
		return &orderResp, buf.Bytes(), fmt.Errorf("%s: gateway declined order: %s", op, orderResp.Message)
	}
	return &orderResp, buf.Bytes(), nil
}

// StopRecurring останавливает автосписание по идентификатору рекуррентного платежа.
func (c *Client) StopRecurring(chargeID string) error {
	return c.recurringAction("/recurring/stop", chargeID)
}

// ResumeRecurring возобновляет автосписание.
func (c *Client) ResumeRecurring(chargeID string) error {
	return c.recurringAction("/recurring/resume", chargeID)
}

func (c *Client) recurringAction(path, chargeID string) error {
	const op = "paymentgateway.recurringAction"

	req, err := c.newRequest(http.MethodPost, path, map[string]string{"charge_id": chargeID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}

// SignBody подписывает тело IPN-уведомления: base64(HMAC-SHA256(body)).
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyBody проверяет подпись тела IPN-уведомления без утечек по времени.
func VerifyBody(secret string, body []byte, signature string) bool {
	expected := SignBody(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignCallback подписывает параметры браузерного callback:
// подпись считается по строке "reference|status_code".
func SignCallback(secret, reference string, statusCode int) string {
	return SignBody(secret, fmt.Appendf(nil, "%s|%d", reference, statusCode))
}

// VerifyCallback проверяет подпись браузерного callback.
func VerifyCallback(secret, reference string, statusCode int, signature string) bool {
	expected := SignCallback(secret, reference, statusCode)
	return hmac.Equal([]byte(expected), []byte(signature))
}
