package inference

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "fake net error" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return false }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: context.DeadlineExceeded, want: ErrorCodeTimeout},
		{name: "canceled", err: context.Canceled, want: ErrorCodeTimeout},
		{name: "net timeout", err: fakeNetError{timeout: true}, want: ErrorCodeTimeout},
		{name: "wrapped timeout text", err: errors.New("Client.Timeout exceeded while awaiting headers: timeout"), want: ErrorCodeTimeout},
		{name: "protocol", err: &ProtocolError{StatusCode: 503, Body: "busy"}, want: ErrorCodeProtocol},
		{name: "decode", err: &DecodeError{Err: errors.New("unexpected EOF")}, want: ErrorCodeProtocol},
		{name: "unexpected shape", err: fmt.Errorf("wrap: %w", ErrUnexpectedResponse), want: ErrorCodeProtocol},
		{name: "refused", err: errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), want: ErrorCodeConnectivity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Fatalf("ClassifyError = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProtocolErrorMessage(t *testing.T) {
	err := &ProtocolError{StatusCode: 500, Body: "internal"}
	if err.Error() != "inference server returned status 500: internal" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
