package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/types"
)

const (
	translatePath = "/language/translate/v2"
	detectPath    = "/language/translate/v2/detect"
)

// Translator detects and translates text between the supported languages.
// Both operations are advisory: implementations must always yield a usable
// result and never propagate an error to the caller.
type Translator interface {
	Detect(ctx context.Context, text string) types.Language
	Translate(ctx context.Context, text string, target types.Language) string
}

// Client is a Google Translate v2 compatible Translator. A missing API key
// turns it into a pass-through: detection reports English and translation
// returns its input.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new translation client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Detect returns the language of text. It fails closed: any transport or API
// error yields English, since detection is advisory only.
func (c *Client) Detect(ctx context.Context, text string) types.Language {
	if c.apiKey == "" || strings.TrimSpace(text) == "" {
		return types.LanguageEnglish
	}

	var result struct {
		Data struct {
			Detections [][]struct {
				Language string `json:"language"`
			} `json:"detections"`
		} `json:"data"`
	}

	if err := c.post(ctx, detectPath, map[string]any{"q": text}, &result); err != nil {
		c.logger.WithError(err).Warn("language detection failed")
		return types.LanguageEnglish
	}

	if len(result.Data.Detections) == 0 || len(result.Data.Detections[0]) == 0 {
		return types.LanguageEnglish
	}
	return types.ParseLanguage(result.Data.Detections[0][0].Language)
}

// Translate renders text into the target language. The input is returned
// unchanged when translation is unavailable, the text is empty, the source
// already matches the target, or the call fails.
func (c *Client) Translate(ctx context.Context, text string, target types.Language) string {
	if c.apiKey == "" || strings.TrimSpace(text) == "" {
		return text
	}
	if c.Detect(ctx, text) == target {
		return text
	}

	var result struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}

	body := map[string]any{
		"q":      text,
		"target": string(target),
		"format": "text",
	}
	if err := c.post(ctx, translatePath, body, &result); err != nil {
		c.logger.WithError(err).Warn("translation failed")
		return text
	}

	if len(result.Data.Translations) == 0 {
		return text
	}
	return result.Data.Translations[0].TranslatedText
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translate: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
