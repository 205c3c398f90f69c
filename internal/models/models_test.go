package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestProfilesResponseDecoding(t *testing.T) {
	body := `{"profiles":[{"id":"p1","name":"Jane Doe"},{"id":"p2","name":"Backend"}]}`

	var resp ProfilesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Failed to unmarshal ProfilesResponse: %v", err)
	}

	if len(resp.Profiles) != 2 {
		t.Fatalf("Expected 2 profiles, got %d", len(resp.Profiles))
	}
	if resp.Profiles[0].ID != "p1" || resp.Profiles[0].Name != "Jane Doe" {
		t.Errorf("Unexpected first profile: %+v", resp.Profiles[0])
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("generate: %w", NewError(ErrNetwork, "connection refused", cause))

	if !errors.Is(err, ErrNetwork) {
		t.Error("Expected wrapped error to match ErrNetwork")
	}
	if errors.Is(err, ErrAuth) {
		t.Error("Did not expect wrapped error to match ErrAuth")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped error to match its cause")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "Nil error", err: nil, expected: ""},
		{name: "Typed error", err: NewError(ErrValidation, "You must select a profile.", nil), expected: "You must select a profile."},
		{name: "Wrapped typed error", err: fmt.Errorf("submit: %w", NewError(ErrAuth, "Login failed.", nil)), expected: "Login failed."},
		{name: "Typed error without message", err: NewError(ErrCancelled, "", nil), expected: "cancelled"},
		{name: "Plain error", err: errors.New("boom"), expected: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}
