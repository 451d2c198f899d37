package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// fencedBlockRe matches the first markdown code fence, optionally tagged json
var fencedBlockRe = regexp.MustCompile("(?s)```(?i:json)?\\s*(.*?)\\s*```")

// extractStrategy tries to pull one JSON value out of model text
type extractStrategy struct {
	name string
	fn   func(text string) (json.RawMessage, bool)
}

// extractStrategies run in order; the first that yields valid JSON wins.
// Code fences are the most reliable signal, then brace/bracket scanning for
// models that skip the fence, then the whole reply as a last resort.
var extractStrategies = []extractStrategy{
	{name: "fenced_block", fn: fromFencedBlock},
	{name: "delimiter_scan", fn: fromDelimiterScan},
	{name: "whole_text", fn: fromWholeText},
}

// ExtractJSON recovers a JSON object or array from a model reply that may wrap it in
// prose or code fences. It never panics; ok is false when nothing parses.
func ExtractJSON(text string) (json.RawMessage, bool) {
	for _, s := range extractStrategies {
		if raw, ok := s.fn(text); ok {
			return raw, true
		}
	}

	log.Warn().
		Int("length", len(text)).
		Str("text", truncateString(text, 500)).
		Msg("Failed to parse JSON from model response")
	return nil, false
}

func fromFencedBlock(text string) (json.RawMessage, bool) {
	m := fencedBlockRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return nil, false
	}
	return strictParse(m[1])
}

// fromDelimiterScan takes whichever of '{' or '[' appears first and slices up
// to the LAST matching closer in the whole text. Trailing commentary that
// itself contains a closer will break the parse; that is a known limitation.
func fromDelimiterScan(text string) (json.RawMessage, bool) {
	startBrace := strings.IndexByte(text, '{')
	startBracket := strings.IndexByte(text, '[')

	start, end := -1, -1
	switch {
	case startBrace != -1 && (startBracket == -1 || startBrace < startBracket):
		start = startBrace
		end = strings.LastIndexByte(text, '}')
	case startBracket != -1:
		start = startBracket
		end = strings.LastIndexByte(text, ']')
	}

	if start == -1 || end < start {
		return nil, false
	}
	return strictParse(text[start : end+1])
}

func fromWholeText(text string) (json.RawMessage, bool) {
	return strictParse(text)
}

// strictParse accepts only a complete JSON object or array; bare scalars
// and null count as failure.
func strictParse(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') || !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

// IsJSONArray reports whether raw holds a JSON array
func IsJSONArray(raw json.RawMessage) bool {
	return firstByte(raw) == '['
}

// IsJSONObject reports whether raw holds a JSON object
func IsJSONObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

func firstByte(raw json.RawMessage) byte {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0
	}
	return s[0]
}

// truncateString shortens s to maxLen bytes for logging
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
