package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultEndpoint is Medium's public GraphQL endpoint.
const DefaultEndpoint = "https://medium.com/_/graphql"

var (
	// ErrProtocol is returned when the response is not the expected
	// one-element batch envelope.
	ErrProtocol = errors.New("graphql response does not contain a single result")
	// ErrUpstream is returned when the envelope decoded fine but the
	// result is not a Post (deleted post, suspended account, error payload).
	ErrUpstream = errors.New("graphql result is not a post")
)

// Client issues the two named queries this system needs against the Medium
// GraphQL endpoint. Requests are sent the way the web frontend sends them:
// a JSON array holding exactly one operation.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a Client. An empty endpoint selects DefaultEndpoint,
// a zero timeout selects 30s.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

type gqlRequest struct {
	OperationName string `json:"operationName"`
	Query         string `json:"query"`
	Variables     any    `json:"variables"`
}

type gqlEnvelope struct {
	Data struct {
		PostResult json.RawMessage `json:"postResult"`
	} `json:"data"`
}

// query posts one named operation and decodes data.postResult into out.
func (c *Client) query(ctx context.Context, operation, query string, variables, out any) error {
	body, err := json.Marshal([]gqlRequest{{
		OperationName: operation,
		Query:         query,
		Variables:     variables,
	}})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s status %d", operation, resp.StatusCode)
	}

	var envelopes []gqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	if len(envelopes) != 1 {
		return fmt.Errorf("%s: %w", operation, ErrProtocol)
	}

	result := envelopes[0].Data.PostResult
	var probe struct {
		Typename string `json:"__typename"`
	}
	if len(result) == 0 || json.Unmarshal(result, &probe) != nil || probe.Typename != "Post" {
		return fmt.Errorf("%s: %w", operation, ErrUpstream)
	}

	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", operation, err)
	}
	return nil
}
