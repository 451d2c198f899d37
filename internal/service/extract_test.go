package service

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "json fence",
			text: "Here you go:\n```json\n[{\"name\":\"A\"}]\n```\nAnything else?",
			want: `[{"name":"A"}]`,
			ok:   true,
		},
		{
			name: "untagged fence",
			text: "```\n{\"summary\":\"s\",\"jobs\":[]}\n```",
			want: `{"summary":"s","jobs":[]}`,
			ok:   true,
		},
		{
			name: "object in prose",
			text: `Result: {"summary":"x","jobs":[]} hope this helps`,
			want: `{"summary":"x","jobs":[]}`,
			ok:   true,
		},
		{
			name: "array before object",
			text: `list [1, 2] end`,
			want: `[1, 2]`,
			ok:   true,
		},
		{
			name: "whole text",
			text: "  {\"a\":1}  ",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "broken fence falls through to scan",
			text: "```\nnot json\n``` then {\"a\":1}",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "no json",
			text: "I could not find any companies.",
			ok:   false,
		},
		{
			name: "unterminated object",
			text: "```json\n{\"summary\": \"cut off\n```",
			ok:   false,
		},
		{
			name: "bare number",
			text: "42",
			ok:   false,
		},
		{
			name: "null",
			text: "null",
			ok:   false,
		},
		{
			name: "boolean",
			text: "true",
			ok:   false,
		},
		{
			name: "fenced string",
			text: "```json\n\"just text\"\n```",
			ok:   false,
		},
		{
			name: "empty",
			text: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := ExtractJSON(tt.text)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (raw %q)", ok, tt.ok, raw)
			}
			if ok && string(raw) != tt.want {
				t.Errorf("raw = %q, want %q", raw, tt.want)
			}
		})
	}
}

func TestExtractJSONDeterministic(t *testing.T) {
	inputs := []string{
		"```json\n{\"summary\":\"s\",\"jobs\":[{\"role\":\"r\"}]}\n```",
		`prefix [{"name":"A"},{"name":"B"}] suffix`,
		"no json at all",
		"```\nnot json\n``` then {\"a\":1}",
	}

	for _, in := range inputs {
		first, ok1 := ExtractJSON(in)
		second, ok2 := ExtractJSON(in)
		if ok1 != ok2 || string(first) != string(second) {
			t.Errorf("ExtractJSON(%q) differs between calls: (%q, %v) then (%q, %v)", in, first, ok1, second, ok2)
		}
	}
}

func TestJSONKind(t *testing.T) {
	if !IsJSONArray([]byte(" [1]")) || IsJSONArray([]byte(`{}`)) {
		t.Error("IsJSONArray misclassified input")
	}
	if !IsJSONObject([]byte("\n{}")) || IsJSONObject([]byte(`[]`)) {
		t.Error("IsJSONObject misclassified input")
	}
	if IsJSONArray(nil) || IsJSONObject(nil) {
		t.Error("empty input classified as JSON")
	}
}
