package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Notifier = (*MailAPINotifier)(nil)

// MailAPINotifier delivers booking confirmations through an HTTP mail API.
// Any transactional mail service with a JSON send endpoint works; the
// request shape follows the common from/to/subject/text convention.
type MailAPINotifier struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// NewMailAPINotifier creates a notifier for the given mail API endpoint.
// from is the sender address stamped on every confirmation.
func NewMailAPINotifier(apiKey, baseURL, from string) (*MailAPINotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mail API key is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("mail API base URL is required")
	}
	if from == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	return &MailAPINotifier{
		apiKey:  apiKey,
		baseURL: baseURL,
		from:    from,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// sendRequest is the request body for the mail send endpoint
type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// sendResponse is the response from the mail send endpoint
type sendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Notify sends one confirmation message to the recipient.
func (n *MailAPINotifier) Notify(ctx context.Context, recipientEmail, subject, body string) error {
	if recipientEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	_, err := n.doRequest(ctx, sendRequest{
		From:    n.from,
		To:      recipientEmail,
		Subject: subject,
		Text:    body,
	})
	return err
}

// doRequest makes a request to the mail send endpoint
func (n *MailAPINotifier) doRequest(ctx context.Context, reqBody sendRequest) (*sendResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var sendResp sendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if sendResp.Error != nil {
		return nil, fmt.Errorf("mail API error: %s", sendResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return &sendResp, nil
}
