package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrNetwork,
		ErrParse,
		ErrMissingElement,
		ErrAlert,
		ErrServe,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .envdash.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "network error",
			code:       ErrNetwork,
			message:    "Channel feed returned 502 Bad Gateway",
			suggestion: "Try again in a minute",
		},
		{
			name:       "missing element",
			code:       ErrMissingElement,
			message:    "No card registered for humidity",
			suggestion: "Register a slot for every metric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .envdash.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .envdash.yaml syntax"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrParse, "Malformed feed", ""),
			expectedParts: []string{"Malformed feed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, "Feed request failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrNetwork, wrapped.Code, "Wrap should default to ErrNetwork code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestNetworkAndParse(t *testing.T) {
	cause := errors.New("boom")

	n := Network(cause, "GET %s failed", "/channels/1/feeds.json")
	assert.Equal(t, ErrNetwork, n.Code)
	assert.Equal(t, "GET /channels/1/feeds.json failed", n.Message)
	assert.NotEmpty(t, n.Suggestion)

	p := Parse(cause, "decode feed")
	assert.Equal(t, ErrParse, p.Code)
	assert.True(t, errors.Is(p, cause))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrNetwork))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))

	// Structured errors survive fmt wrapping
	outer := fmt.Errorf("cycle: %w", Parse(nil, "bad body"))
	assert.True(t, IsCode(outer, ErrParse))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp: i/o timeout"),
		ErrNetwork,
		"Cannot reach the channel feed",
		"Check your network connection",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Cannot reach the channel feed")
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("  oops \n"), "oops"},
		{"structured without cause", New(ErrParse, "Malformed feed", "hint"), "Malformed feed"},
		{"structured with cause", Network(errors.New("EOF"), "Feed request failed"), "Feed request failed: EOF"},
		{"wrapped structured", fmt.Errorf("x: %w", New(ErrAlert, "publish failed", "")), "publish failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.err))
		})
	}
}
