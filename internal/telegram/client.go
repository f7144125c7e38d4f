package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bizgifts-bot/internal/model"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client is a thin Bot API client. It covers only the methods this service
// uses: long polling, plain-text replies, and the four business-account asset
// operations.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientConfig holds configuration for the Bot API client.
type ClientConfig struct {
	Token   string
	BaseURL string        // defaults to DefaultBaseURL
	Timeout time.Duration // per-request timeout, 0 means no client timeout
}

// NewClient creates a Bot API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
	}
}

// envelope is the standard Bot API response wrapper.
type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call performs one Bot API method call. ok=false envelopes come back as
// *APIError; everything else (transport, HTTP, decoding) as wrapped errors.
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encode %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}

	if !env.OK {
		return &APIError{Method: method, Code: env.ErrorCode, Description: env.Description}
	}

	if result != nil {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("telegram: decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for updates after offset. timeout is the server-side
// poll duration in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         timeout,
		"allowed_updates": []string{"message", "business_connection"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a plain-text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// ListOwnedGifts returns the gifts owned by a connected business account.
// An account owning nothing yields an empty slice, not an error.
func (c *Client) ListOwnedGifts(ctx context.Context, connectionID string) ([]model.OwnedGift, error) {
	payload := map[string]interface{}{
		"business_connection_id": connectionID,
	}

	var result ownedGifts
	if err := c.call(ctx, "getBusinessAccountGifts", payload, &result); err != nil {
		return nil, err
	}

	gifts := make([]model.OwnedGift, 0, len(result.Gifts))
	for _, g := range result.Gifts {
		gifts = append(gifts, model.OwnedGift{
			OwnedID: g.OwnedGiftID,
			Name:    g.label(),
		})
	}
	return gifts, nil
}

// StarBalance returns the star balance of a connected business account.
func (c *Client) StarBalance(ctx context.Context, connectionID string) (int64, error) {
	payload := map[string]interface{}{
		"business_connection_id": connectionID,
	}

	var result starAmount
	if err := c.call(ctx, "getBusinessAccountStarBalance", payload, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

// TransferGift moves one owned gift from the connected business account to
// another chat.
func (c *Client) TransferGift(ctx context.Context, connectionID, ownedGiftID string, newOwnerChatID int64) error {
	payload := map[string]interface{}{
		"business_connection_id": connectionID,
		"owned_gift_id":          ownedGiftID,
		"new_owner_chat_id":      newOwnerChatID,
	}
	return c.call(ctx, "transferGift", payload, nil)
}

// ConvertGiftToStars converts one owned gift into stars on the connected
// business account.
func (c *Client) ConvertGiftToStars(ctx context.Context, connectionID, ownedGiftID string) error {
	payload := map[string]interface{}{
		"business_connection_id": connectionID,
		"owned_gift_id":          ownedGiftID,
	}
	return c.call(ctx, "convertGiftToStars", payload, nil)
}
