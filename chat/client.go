package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/worraphat/jarvis/agent/contract"
)

const maxResponseBytes = 2 << 20

// PlannerClient sends one exchange to the planner service.
type PlannerClient interface {
	Send(ctx context.Context, text string, history []contract.Turn) (contract.Reply, error)
}

// HTTPPlannerClient talks to the planner's POST /chat endpoint.
type HTTPPlannerClient struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes HTTPPlannerClient.
type ClientOption func(*HTTPPlannerClient)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPPlannerClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewHTTPPlannerClient(baseURL string, opts ...ClientOption) (*HTTPPlannerClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("planner base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid planner url: %w", err)
	}

	c := &HTTPPlannerClient{
		baseURL: trimmed,
		// No client-side timeout: the exchange has no cancellation policy,
		// an unresolved request leaves its placeholder in place.
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Send posts the text plus history and decodes the reply. Missing fields in
// the response are tolerated; transport and decode failures are returned as
// errors and collapse into the single user-visible failure message upstream.
func (c *HTTPPlannerClient) Send(ctx context.Context, text string, history []contract.Turn) (contract.Reply, error) {
	body, err := json.Marshal(contract.ChatRequest{Text: text, History: history})
	if err != nil {
		return contract.Reply{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return contract.Reply{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contract.Reply{}, fmt.Errorf("execute chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return contract.Reply{}, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return contract.Reply{}, fmt.Errorf("chat http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var reply contract.Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return contract.Reply{}, fmt.Errorf("decode chat response: %w", err)
	}
	return reply, nil
}
