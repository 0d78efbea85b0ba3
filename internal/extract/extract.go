// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls the first balanced JSON object out of free-form
// model output. Models wrap JSON in prose and code fences, so the scanner
// counts brace depth outside string literals instead of matching greedily.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Reason classifies an extraction failure.
type Reason string

const (
	// NoJSONFound means the input has no '{' or the first one is never closed.
	NoJSONFound Reason = "no_json_found"
	// ParseFailure means a balanced object was found but is not valid JSON.
	ParseFailure Reason = "parse_failure"
)

// snippetLen is the number of runes of input kept in an Error.
const snippetLen = 200

// Error reports why no JSON object could be extracted.
type Error struct {
	Reason  Reason
	Snippet string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract: %s: %v (input: %q)", e.Reason, e.Err, e.Snippet)
	}
	return fmt.Sprintf("extract: %s (input: %q)", e.Reason, e.Snippet)
}

func (e *Error) Unwrap() error { return e.Err }

// ExtractJSON returns the first balanced JSON object in raw. The result is
// guaranteed to decode as a JSON object.
func ExtractJSON(raw string) (json.RawMessage, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, &Error{Reason: NoJSONFound, Snippet: snippet(raw)}
	}
	end := matchingBrace(raw, start)
	if end < 0 {
		return nil, &Error{Reason: NoJSONFound, Snippet: snippet(raw)}
	}

	candidate := raw[start : end+1]
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, &Error{Reason: ParseFailure, Snippet: snippet(raw), Err: err}
	}
	return json.RawMessage(candidate), nil
}

// Decode extracts the first JSON object from raw and unmarshals it into v.
func Decode(raw string, v any) error {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(obj, v); err != nil {
		return &Error{Reason: ParseFailure, Snippet: snippet(raw), Err: err}
	}
	return nil
}

// matchingBrace returns the index of the '}' closing the '{' at start, or -1.
// Braces inside double-quoted strings are ignored; a backslash escapes the
// next byte inside a string.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:snippetLen]) + "..."
}
