package services

import (
	"errors"
	"testing"
)

func TestExtractJSONObject_BareObject(t *testing.T) {
	got, err := extractJSONObject(`{"a": 1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_FencedBlock(t *testing.T) {
	content := "Here is the analysis:\n```json\n{\"category\": \"Service\"}\n```\nHope this helps."
	got, err := extractJSONObject(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"category": "Service"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_ProseWrapped(t *testing.T) {
	content := `Sure! The result is {"needs_action": false, "tags": []} as requested.`
	got, err := extractJSONObject(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"needs_action": false, "tags": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_NestedBraces(t *testing.T) {
	content := `result: {"outer": {"inner": {"deep": true}}}`
	got, err := extractJSONObject(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"outer": {"inner": {"deep": true}}}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	content := `{"summary": "use {placeholders} like this", "ok": true}`
	got, err := extractJSONObject(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_NoJSON(t *testing.T) {
	cases := []string{
		"",
		"no json here at all",
		"unbalanced { brace",
	}
	for _, content := range cases {
		_, err := extractJSONObject(content)
		if !errors.Is(err, ErrMalformedOutput) {
			t.Errorf("extractJSONObject(%q) error = %v, expected ErrMalformedOutput", content, err)
		}
	}
}
