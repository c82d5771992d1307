// Package chatreply produces free-form replies for utterances that match
// no intent.
package chatreply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Responder answers a general conversation utterance.
type Responder interface {
	Reply(ctx context.Context, utterance string) (string, error)
}

// maxReplyBytes caps how much of a chat response is read.
const maxReplyBytes = 1 << 20

// DefaultReply is the Canned responder's answer when none is configured.
const DefaultReply = "I can help you log your health, manage appointments and tasks, or show your history. What would you like to do?"

// Canned always returns the same reply.
type Canned string

// Reply implements Responder.
func (c Canned) Reply(context.Context, string) (string, error) {
	if c == "" {
		return DefaultReply, nil
	}
	return string(c), nil
}

// HTTP posts {"message": ...} to a chat endpoint and reads {"reply": ...}.
type HTTP struct {
	url  string
	http *http.Client
}

// NewHTTP creates a client for url. A non-positive timeout defaults to ten
// seconds.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		url:  strings.TrimSpace(url),
		http: &http.Client{Timeout: timeout},
	}
}

type request struct {
	Message string `json:"message"`
}

type response struct {
	Reply string `json:"reply"`
}

// Reply implements Responder.
func (c *HTTP) Reply(ctx context.Context, utterance string) (string, error) {
	body, err := json.Marshal(request{Message: utterance})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if len(data) > maxReplyBytes {
		return "", fmt.Errorf("chat response exceeds %d bytes", maxReplyBytes)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Reply, nil
}

// New returns an HTTP responder for a non-empty url, otherwise Canned.
func New(url string, timeout time.Duration) Responder {
	if strings.TrimSpace(url) == "" {
		return Canned("")
	}
	return NewHTTP(url, timeout)
}
