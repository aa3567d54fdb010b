package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const defaultBaseURL = "https://graph.facebook.com/v18.0"

// Client sends messages through the WhatsApp Cloud API: conversation
// replies to leads and alert messages to the operator number.
type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken, phoneID string) *Client {
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		baseURL:     defaultBaseURL,
		httpClient:  http.DefaultClient,
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

func (c *Client) SendText(ctx context.Context, to, text string) error {
	if !c.Configured() {
		log.Println("[whatsapp] ACCESS_TOKEN or PHONE_ID not configured")
		return fmt.Errorf("whatsapp not configured")
	}

	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[whatsapp] send failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[whatsapp] API returned status %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("whatsapp api error: %d", resp.StatusCode)
	}

	var result SendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return err
	}
	if result.Error != nil {
		log.Printf("[whatsapp] API error: %s (code %d)", result.Error.Message, result.Error.Code)
		return fmt.Errorf("whatsapp: %s", result.Error.Message)
	}

	return nil
}
