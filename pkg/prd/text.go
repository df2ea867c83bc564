// Package prd turns uploaded PRD documents into project blueprints.
package prd

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/projectforge/aipg/pkg/errors"
)

// DefaultMaxBytes caps uploaded PRD size.
const DefaultMaxBytes = 2 << 20

// ExtractText decodes an uploaded PRD file into normalized plain text.
// Only plain-text formats are accepted; binary document formats need a
// dedicated extraction service.
func ExtractText(filename string, data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if int64(len(data)) > maxBytes {
		return "", errors.WithFields(
			errors.New(errors.InvalidInput, "PRD file exceeds size limit"),
			errors.Fields{"size": len(data), "limit": maxBytes})
	}
	if len(data) == 0 {
		return "", errors.New(errors.InvalidInput, "PRD file is empty")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "txt", "md", "markdown", "text":
	default:
		return "", errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported file type"),
			errors.Fields{"extension": ext})
	}

	text := norm.NFC.String(string(data))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New(errors.InvalidInput, "PRD file carries no text content")
	}
	return text, nil
}
