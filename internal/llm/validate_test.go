package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func diagnosisSchema() *Schema {
	return &Schema{
		Name:        "test-diagnosis",
		Description: "A mistake diagnosis",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"diagnosis": map[string]any{"type": "string"},
				"score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
				"category":  map[string]any{"type": "string", "enum": []any{"Conceptual", "Procedural", "Careless"}},
				"practice": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"diagnosis", "score"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"diagnosis":"Forgot to borrow","score":40,"category":"Procedural"}`, false},
		{"valid without optional", `{"diagnosis":"Rounded too early","score":70}`, false},
		{"missing required", `{"diagnosis":"Sign error"}`, true},
		{"wrong type", `{"diagnosis":"Sign error","score":"forty"}`, true},
		{"out of range", `{"diagnosis":"Sign error","score":140}`, true},
		{"invalid enum", `{"diagnosis":"Sign error","score":10,"category":"Lazy"}`, true},
		{"wrong item type", `{"diagnosis":"x","score":1,"practice":[1,2]}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(diagnosisSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	if err := validateResponse(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"```", "```"},
	}
	for _, tt := range tests {
		if got := string(StripCodeFence([]byte(tt.in))); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
