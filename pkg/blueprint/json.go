package blueprint

import (
	"encoding/json"
	"strings"

	"github.com/projectforge/aipg/pkg/errors"
)

// ExtractJSON pulls a JSON object out of raw model output. Models routinely
// wrap their answer in markdown fences or prepend prose, so the extraction
// strips ```json fences and stray backticks, then narrows to the outermost
// brace-delimited span.
func ExtractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", errors.New(errors.InvalidResponse, "empty model output")
	}

	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", errors.WithFields(
			errors.New(errors.InvalidResponse, "no JSON object found in model output"),
			errors.Fields{"output_length": len(raw)})
	}

	return cleaned[start : end+1], nil
}

// Parse extracts and decodes a blueprint from raw model output. The decoded
// blueprint is validated before being returned.
func Parse(raw string) (*Blueprint, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var bp Blueprint
	if err := json.Unmarshal([]byte(jsonText), &bp); err != nil {
		return nil, errors.Wrap(err, errors.BlueprintInvalid, "failed to decode blueprint JSON")
	}

	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

// ParseFileMap extracts and decodes the {"files": {path: content}} payload
// that the code generation agents are instructed to return. The returned map
// is nil with an error when the output carries no such structure.
func ParseFileMap(raw string) (map[string]string, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Files map[string]string `json:"files"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to decode file map JSON")
	}
	if len(payload.Files) == 0 {
		return nil, errors.New(errors.InvalidResponse, "model output carried no files")
	}
	return payload.Files, nil
}

// MarshalIndent renders the blueprint as pretty-printed JSON for storage and
// API responses.
func (b *Blueprint) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to marshal blueprint")
	}
	return data, nil
}
