package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedResponse marks model output that does not have the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

// stripCodeFence removes a surrounding markdown code block, if any.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractJSON takes the outermost object from text that may carry prose around it.
func extractJSON(text string) string {
	text = stripCodeFence(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// decodeStrict requires raw to be exactly one JSON object with only known fields.
func decodeStrict(raw string, target any) error {
	dec := json.NewDecoder(strings.NewReader(stripCodeFence(raw)))
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", ErrMalformedResponse)
	}
	return nil
}

// decodeLenient accepts extra prose and unknown fields around the object.
func decodeLenient(raw string, target any) error {
	if err := json.Unmarshal([]byte(extractJSON(raw)), target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
