package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasderef/deref"
	"github.com/erraggy/oasderef/element"
)

type dereferenceInput struct {
	Spec             specInput `json:"spec"                         jsonschema:"The OAS document to dereference"`
	Mode             string    `json:"mode,omitempty"               jsonschema:"Dereference mode: default or strict. Strict keeps allOf compositions untouched"`
	AllowMetaPatches *bool     `json:"allow_meta_patches,omitempty" jsonschema:"Annotate dereferenced objects with a $$ref member naming their origin"`
	ResolveInternal  *bool     `json:"resolve_internal,omitempty"   jsonschema:"Resolve references within the same document (default true)"`
	ResolveExternal  *bool     `json:"resolve_external,omitempty"   jsonschema:"Resolve references into other documents (default true)"`
	BaseURI          string    `json:"base_uri,omitempty"           jsonschema:"Location relative references resolve against. Defaults to the file path or URL of the document"`
	Format           string    `json:"format,omitempty"             jsonschema:"Output format: json (default) or yaml"`
}

type dereferenceError struct {
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	Path          string `json:"path"`
	Ref           string `json:"ref,omitempty"`
	ExternalValue string `json:"external_value,omitempty"`
}

type dereferenceOutput struct {
	Document   string             `json:"document"`
	Format     string             `json:"format"`
	ErrorCount int                `json:"error_count"`
	Errors     []dereferenceError `json:"errors,omitempty"`
}

func handleDereference(ctx context.Context, _ *mcp.CallToolRequest, input dereferenceInput) (*mcp.CallToolResult, dereferenceOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	format := input.Format
	switch format {
	case "":
		format = "json"
	case "json", "yaml":
	default:
		return errResult(fmt.Errorf("invalid format %q: expected json or yaml", format)), dereferenceOutput{}, nil
	}

	root, base, err := input.Spec.load(ctx)
	if err != nil {
		return errResult(err), dereferenceOutput{}, nil
	}

	opts := []deref.Option{
		deref.WithLoader(documents),
		deref.WithMaxRefDepth(cfg.MaxRefDepth),
		deref.WithResolveExternal(cfg.ResolveExternal),
		deref.WithAllowMetaPatches(cfg.AllowMetaPatches),
	}
	mode := cfg.Mode
	if input.Mode != "" {
		mode = deref.Mode(input.Mode)
	}
	opts = append(opts, deref.WithMode(mode))
	if input.AllowMetaPatches != nil {
		opts = append(opts, deref.WithAllowMetaPatches(*input.AllowMetaPatches))
	}
	if input.ResolveInternal != nil {
		opts = append(opts, deref.WithResolveInternal(*input.ResolveInternal))
	}
	if input.ResolveExternal != nil {
		opts = append(opts, deref.WithResolveExternal(*input.ResolveExternal))
	}
	if input.BaseURI != "" {
		base = input.BaseURI
	}
	if base != "" {
		opts = append(opts, deref.WithBaseURI(base))
	}

	result, err := deref.Dereference(ctx, root, opts...)
	if err != nil {
		return errResult(err), dereferenceOutput{}, nil
	}

	document, err := encode(result, format)
	if err != nil {
		return errResult(err), dereferenceOutput{}, nil
	}

	output := dereferenceOutput{
		Document:   document,
		Format:     format,
		ErrorCount: len(result.Errors),
	}
	for _, rec := range result.Errors {
		output.Errors = append(output.Errors, dereferenceError{
			Kind:          string(rec.Kind),
			Message:       sanitize(rec.Message),
			Path:          rec.Pointer(),
			Ref:           rec.Ref,
			ExternalValue: rec.ExternalValue,
		})
	}
	return nil, output, nil
}

// encode renders the result, surfacing provenance as $$ref members.
func encode(result *deref.Result, format string) (string, error) {
	out := element.Patched(result.Element)
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = element.MarshalYAML(out)
	} else {
		data, err = element.MarshalJSONIndent(out, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
