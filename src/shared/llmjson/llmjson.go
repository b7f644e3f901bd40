// Package llmjson extracts JSON values from loosely structured LLM output.
// Models wrap their answers in prose, markdown fences or reasoning preambles;
// every call site that parses model output goes through Extract so the
// bracket-scanning logic lives in exactly one place.
package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON is returned when no parseable JSON value is found.
	ErrNoJSON = errors.New("llmjson: no valid JSON found in content")

	thinkRe = regexp.MustCompile(`(?is)</?think>`)
	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// Extract returns the first JSON value found in content. It strips
// reasoning-model <think> tags, prefers the body of a fenced code block,
// tries a direct parse, and finally scans for the first balanced {...} or
// [...] span.
func Extract(content string) (any, error) {
	text := strings.TrimSpace(thinkRe.ReplaceAllString(content, ""))
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}

	for _, open := range []byte{'[', '{'} {
		i := strings.IndexByte(text, open)
		if i < 0 {
			continue
		}
		depth := 0
		for j := i; j < len(text); j++ {
			switch text[j] {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					if err := json.Unmarshal([]byte(text[i:j+1]), &v); err == nil {
						return v, nil
					}
					return nil, ErrNoJSON
				}
			}
		}
		break
	}
	return nil, ErrNoJSON
}

// ExtractObject is Extract restricted to a JSON object.
func ExtractObject(content string) (map[string]any, error) {
	v, err := Extract(content)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNoJSON
	}
	return obj, nil
}

// ExtractArray is Extract restricted to a JSON array. A wrapper object is
// tolerated: the first of keys holding an array is unwrapped.
func ExtractArray(content string, keys ...string) ([]any, error) {
	v, err := Extract(content)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, k := range keys {
			if arr, ok := t[k].([]any); ok {
				return arr, nil
			}
		}
	}
	return nil, ErrNoJSON
}
