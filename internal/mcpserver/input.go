package mcpserver

import (
	"context"
	"fmt"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/loader"
)

// specInput represents the three ways an OAS document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// documents is the session-scoped loader shared by every tool call, so a
// document fetched once is not fetched again.
var documents = loader.New(
	loader.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	loader.WithLogger(loader.NewSlogAdapter(nil)),
)

// load decodes the document from whichever input was provided. base is the
// location relative references resolve against; it is empty for inline content.
func (s specInput) load(ctx context.Context) (root *element.Element, base string, err error) {
	count := 0
	for _, v := range []string{s.File, s.URL, s.Content} {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return nil, "", fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	switch {
	case s.Content != "":
		if int64(len(s.Content)) > cfg.MaxInlineSize {
			return nil, "", fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASDEREF_MAX_INLINE_SIZE to increase",
				len(s.Content), cfg.MaxInlineSize)
		}
		root, err = element.Decode([]byte(s.Content), "inline")
		return root, "", err
	case s.File != "":
		base = loader.Normalize(s.File)
	default:
		base = s.URL
	}
	root, err = documents.Load(ctx, base)
	return root, base, err
}
