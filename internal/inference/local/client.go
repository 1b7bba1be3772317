// Package local implements inference.Client against a locally hosted
// model server speaking the generic /models + /generate JSON protocol.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prioritizer-backend/internal/inference"
)

// Client talks HTTP/JSON to a local inference server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("inference base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type modelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

type modelEntry struct {
	Name       string       `json:"name"`
	Size       int64        `json:"size"`
	ModifiedAt time.Time    `json:"modified_at"`
	Details    modelDetails `json:"details"`
}

type modelsResponse struct {
	Models []modelEntry `json:"models"`
}

type generateRequest struct {
	Model   string                    `json:"model"`
	Prompt  string                    `json:"prompt"`
	System  string                    `json:"system,omitempty"`
	Options inference.GenerateOptions `json:"options"`
	Stream  bool                      `json:"stream"`
}

type generateResponse struct {
	Model         string `json:"model"`
	Response      string `json:"response"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"`
	EvalCount     int    `json:"eval_count"`
	EvalDuration  int64  `json:"eval_duration"`
}

// ListModels fetches the server's model list.
func (c *Client) ListModels(ctx context.Context) ([]inference.ModelInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &inference.DecodeError{Err: err}
	}
	if parsed.Models == nil {
		return nil, fmt.Errorf("models field missing: %w", inference.ErrUnexpectedResponse)
	}

	out := make([]inference.ModelInfo, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		if strings.TrimSpace(m.Name) == "" {
			continue
		}
		out = append(out, inference.ModelInfo{
			Name:              m.Name,
			SizeBytes:         m.Size,
			ModifiedAt:        m.ModifiedAt,
			Family:            m.Details.Family,
			ParameterSize:     m.Details.ParameterSize,
			QuantizationLevel: m.Details.QuantizationLevel,
		})
	}
	return out, nil
}

// Generate dispatches one non-streaming generation call.
func (c *Client) Generate(ctx context.Context, req inference.GenerateRequest) (inference.GenerateResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return inference.GenerateResponse{}, fmt.Errorf("model is required")
	}
	payload, err := json.Marshal(generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Options: req.Options,
		Stream:  false,
	})
	if err != nil {
		return inference.GenerateResponse{}, err
	}

	body, err := c.do(ctx, http.MethodPost, "/generate", payload)
	if err != nil {
		return inference.GenerateResponse{}, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return inference.GenerateResponse{}, &inference.DecodeError{Err: err}
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return inference.GenerateResponse{}, fmt.Errorf("empty response text: %w", inference.ErrUnexpectedResponse)
	}
	return inference.GenerateResponse{
		Model:         parsed.Model,
		Text:          parsed.Response,
		Done:          parsed.Done,
		TotalDuration: time.Duration(parsed.TotalDuration),
		EvalCount:     parsed.EvalCount,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("inference request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &inference.ProtocolError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}
	return s
}

var _ inference.Client = (*Client)(nil)
