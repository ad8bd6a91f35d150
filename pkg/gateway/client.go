// Package gateway is the HTTP client for the hosted WhatsApp gateway.
// Every call is scoped to one user's channel token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/env"
)

const maxErrorBodyBytes = 512

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from the environment.
// GATEWAY_BASE_URL is required; the limiter enforces a floor between calls
// on top of the per-pass delays so bursts from concurrent users stay polite.
func NewClient() *Client {
	baseURL := env.MustGetEnvString("GATEWAY_BASE_URL")
	timeout := env.GetEnvDurationOrDefault("GATEWAY_HTTP_TIMEOUT", 30*time.Second)
	minInterval := env.GetEnvDurationOrDefault("GATEWAY_MIN_CALL_INTERVAL", 500*time.Millisecond)
	return newClient(baseURL, &http.Client{Timeout: timeout}, minInterval)
}

// NewClientWithHTTP is for tests and custom transports
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return newClient(baseURL, httpClient, 0)
}

func newClient(baseURL string, httpClient *http.Client, minInterval time.Duration) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
	if minInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return c
}

// ListGroups fetches one page of the user's group list
func (c *Client) ListGroups(ctx context.Context, token string, count int, offset int) ([]Group, error) {
	path := "/groups?count=" + strconv.Itoa(count) + "&offset=" + strconv.Itoa(offset)
	var out listGroupsResponse
	if err := c.doJSON(ctx, token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// GetGroup fetches a single group with its participant list populated
func (c *Client) GetGroup(ctx context.Context, token string, groupID string) (*Group, error) {
	var out Group
	if err := c.doJSON(ctx, token, http.MethodGet, "/groups/"+groupID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the authenticated channel's own identity
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	var out Identity
	if err := c.doJSON(ctx, token, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage sends a text message to one group
func (c *Client) SendMessage(ctx context.Context, token string, groupID string, body string) (string, error) {
	req := sendMessageRequest{GroupID: groupID, Body: body}
	var out sendMessageResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/messages", req, &out); err != nil {
		return "", err
	}
	return out.MessageID, nil
}

func (c *Client) doJSON(ctx context.Context, token string, method string, path string, body interface{}, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
