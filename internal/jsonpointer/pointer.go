package jsonpointer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/erraggy/oasderef/element"
)

var (
	unescaper = strings.NewReplacer("~1", "/", "~0", "~")
	escaper   = strings.NewReplacer("~", "~0", "/", "~1")
)

// Parse splits a pointer (optionally percent-encoded, as found in a URI
// fragment) into unescaped reference tokens. The empty pointer yields no
// tokens and addresses the whole document.
func Parse(pointer string) ([]string, error) {
	decoded, err := url.PathUnescape(pointer)
	if err != nil {
		return nil, fmt.Errorf("invalid percent-encoding in pointer %q: %w", pointer, err)
	}
	if decoded == "" {
		return nil, nil
	}
	if decoded[0] != '/' {
		return nil, fmt.Errorf("pointer %q must start with '/'", decoded)
	}
	tokens := strings.Split(decoded[1:], "/")
	for i, tok := range tokens {
		if strings.Contains(strings.ReplaceAll(strings.ReplaceAll(tok, "~0", ""), "~1", ""), "~") {
			return nil, fmt.Errorf("invalid escape sequence in pointer token %q", tok)
		}
		tokens[i] = unescaper.Replace(tok)
	}
	return tokens, nil
}

// Escape escapes a single reference token.
func Escape(token string) string {
	return escaper.Replace(token)
}

// Compile joins tokens back into a pointer string.
func Compile(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(tok))
	}
	return b.String()
}

// EvaluationError reports the prefix of a pointer at which evaluation failed.
type EvaluationError struct {
	Pointer string
	Prefix  string
	Reason  string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("pointer %q not found: %s at %q", e.Pointer, e.Reason, e.Prefix)
}

// Evaluate walks root along tokens.
func Evaluate(root *element.Element, tokens []string) (*element.Element, error) {
	current := root
	for i, tok := range tokens {
		fail := func(reason string) error {
			return &EvaluationError{
				Pointer: Compile(tokens),
				Prefix:  Compile(tokens[:i+1]),
				Reason:  reason,
			}
		}
		switch {
		case current.IsObject():
			next := current.Get(tok)
			if next == nil && !current.Has(tok) {
				return nil, fail(fmt.Sprintf("missing key %q", tok))
			}
			current = next
		case current.IsArray():
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || (len(tok) > 1 && tok[0] == '0') {
				return nil, fail(fmt.Sprintf("invalid array index %q", tok))
			}
			if idx >= current.Len() {
				return nil, fail(fmt.Sprintf("index %d out of bounds (length %d)", idx, current.Len()))
			}
			current = current.Index(idx)
		default:
			return nil, fail("cannot descend into a primitive value")
		}
	}
	return current, nil
}
