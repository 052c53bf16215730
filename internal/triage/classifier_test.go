package triage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			"api error with 429 status",
			&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "Rate limit reached"},
			true,
		},
		{
			"wrapped api error with 429 status",
			fmt.Errorf("classifier call failed: %w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}),
			true,
		},
		{
			"api error with other status",
			&openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Incorrect API key"},
			false,
		},
		{
			"plain error mentioning 429",
			errors.New("dialing 127.0.0.1:4290: connection refused"),
			false,
		},
		{
			"context deadline",
			errors.New("context deadline exceeded"),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimited(tt.err); got != tt.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
