package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const defaultBaseURL = "https://graph.instagram.com/v18.0"

// Client sends direct-message replies to Instagram users.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  http.DefaultClient,
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != ""
}

func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	if !c.Configured() {
		return fmt.Errorf("instagram not configured")
	}

	payload := map[string]any{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/me/messages", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[instagram] send failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("[instagram] API returned status %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("instagram api error: %d", resp.StatusCode)
	}

	return nil
}
