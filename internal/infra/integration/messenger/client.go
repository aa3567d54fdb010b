package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://graph.facebook.com/v18.0"

// Client sends replies back to Facebook Messenger users through the page
// Send API.
type Client struct {
	pageAccessToken string
	baseURL         string
	httpClient      *http.Client
}

func NewClient(pageAccessToken string) *Client {
	return &Client{
		pageAccessToken: pageAccessToken,
		baseURL:         defaultBaseURL,
		httpClient:      http.DefaultClient,
	}
}

func (c *Client) Configured() bool {
	return c.pageAccessToken != ""
}

func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	if !c.Configured() {
		return fmt.Errorf("messenger not configured")
	}

	payload := sendRequest{
		Recipient: recipient{ID: recipientID},
		Message:   message{Text: text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, url.QueryEscape(c.pageAccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[messenger] send failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("[messenger] API returned status %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("messenger api error: %d", resp.StatusCode)
	}

	return nil
}
