package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Client abstracts a local text-generation server. Implementations live in
// provider subpackages; the Manager layers health tracking, model selection
// and response caching on top.
type Client interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// GenerateOptions are per-request generation parameters.
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"num_predict,omitempty"`
}

// GenerateRequest captures one text-generation call.
type GenerateRequest struct {
	Model   string
	Prompt  string
	System  string
	Options GenerateOptions
}

// GenerateResponse is the server's reply to a generation call.
type GenerateResponse struct {
	Model         string
	Text          string
	Done          bool
	TotalDuration time.Duration
	EvalCount     int
}

// ModelInfo describes one model advertised by the server.
type ModelInfo struct {
	Name              string
	SizeBytes         int64
	ModifiedAt        time.Time
	Family            string
	ParameterSize     string
	QuantizationLevel string
}

// Error codes recorded alongside failed inference attempts.
const (
	ErrorCodeConnectivity = "CONNECTIVITY_ERROR"
	ErrorCodeTimeout      = "TIMEOUT_ERROR"
	ErrorCodeProtocol     = "PROTOCOL_ERROR"
)

// ErrNoModels is returned when the server is reachable but advertises no
// usable model.
var ErrNoModels = errors.New("inference server has no models")

// ErrUnexpectedResponse is returned when the server answered 2xx with a body
// that parsed but did not match the expected shape.
var ErrUnexpectedResponse = errors.New("unexpected inference server response")

// ProtocolError reports a non-2xx HTTP response.
type ProtocolError struct {
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("inference server returned status %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports a 2xx response whose body could not be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("inference response decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ClassifyError maps a failed inference call onto the error taxonomy. The
// caller uses the code for logging and metrics only; every failure triggers
// the same fallback behavior.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCodeTimeout
	}
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return ErrorCodeProtocol
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return ErrorCodeProtocol
	}
	if errors.Is(err, ErrUnexpectedResponse) {
		return ErrorCodeProtocol
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return ErrorCodeTimeout
	}
	return ErrorCodeConnectivity
}
