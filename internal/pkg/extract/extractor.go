package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupported means the content type needs the grading backend's
// extraction step; it is not a local failure.
var ErrUnsupported = errors.New("extract: unsupported content type")

// Extractor converts an uploaded document into plain text. Binary formats
// (PDF, Word) are summarized remotely, so the only local implementation
// handles plain text.
type Extractor interface {
	Supports(contentType string) bool
	Extract(ctx context.Context, name string, content io.Reader) (string, error)
}

type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Supports(contentType string) bool {
	return strings.HasPrefix(contentType, "text/plain")
}

func (e *PlainTextExtractor) Extract(ctx context.Context, name string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}
