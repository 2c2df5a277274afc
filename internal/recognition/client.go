// Package recognition предоставляет клиент внешнего сервиса распознавания номеров.
package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrPlateNotFound возвращается, если сервис не нашёл источник изображения
// или не смог выделить в нём ни одного символа.
var ErrPlateNotFound = errors.New("plate not recognized")

// Client инкапсулирует HTTP-взаимодействие с сервисом распознавания.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type plateResponse struct {
	Plate string `json:"plate"`
}

// NewClient создаёт HTTP-клиент для сервиса распознавания по указанному адресу.
// Запрос распознавания идемпотентен, поэтому сетевые сбои ретраятся.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc.StandardClient(),
	}
}

// RecognizePlate запрашивает распознанный текст номера для указанного
// источника изображения. Текст возвращается как есть, без нормализации.
func (c *Client) RecognizePlate(ctx context.Context, imageHandle string) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", fmt.Errorf("recognition client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	reqURL := fmt.Sprintf("%s/api/plates?image=%s", base, url.QueryEscape(imageHandle))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return "", ErrPlateNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result plateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if strings.TrimSpace(result.Plate) == "" {
		return "", ErrPlateNotFound
	}

	return result.Plate, nil
}
