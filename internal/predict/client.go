package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client talks to the segmentation backend. At most one prediction
// request is in flight at a time: issuing a new one cancels the
// previous, so the last extent the user confirmed always wins.
type Client struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewClient creates a prediction client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Predict posts the extent, class list, and model identifier to the
// backend and decodes the prediction. Any in-flight request is
// cancelled first. Failures are returned as *PredictionError.
func (c *Client) Predict(ctx context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &PredictionError{Kind: ErrEncode, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/predict", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, &PredictionError{Kind: ErrEncode, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &PredictionError{Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &PredictionError{Kind: ErrStatus, Status: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &PredictionError{Kind: ErrDecode, Err: err}
	}

	return &out, nil
}

// Models returns the model identifiers the backend can serve.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/models", c.baseURL), nil)
	if err != nil {
		return nil, &PredictionError{Kind: ErrEncode, Err: err}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &PredictionError{Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &PredictionError{Kind: ErrStatus, Status: resp.StatusCode}
	}

	var models []ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, &PredictionError{Kind: ErrDecode, Err: err}
	}

	return models, nil
}
