// Package parser turns raw model completions into validated records. The model
// is told to return bare JSON but sometimes wraps it in a code fence or prose,
// so decoding is strict first and salvages the outermost container second.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fence = "```"

	// MaxExcerptRunes bounds the diagnostic excerpt carried by a ParseFailure.
	MaxExcerptRunes = 200
)

type FailureKind string

const (
	KindSyntax FailureKind = "syntax"
	KindSchema FailureKind = "schema"
)

// ParseFailure reports a completion that could not be decoded (KindSyntax) or
// decoded into something of the wrong shape (KindSchema).
type ParseFailure struct {
	Shape   string
	Kind    FailureKind
	Err     error
	Excerpt string
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("parse %s: %s error: %v", f.Shape, f.Kind, f.Err)
}

func (f *ParseFailure) Unwrap() error { return f.Err }

// IsSchemaError reports whether err is a ParseFailure of kind schema.
func IsSchemaError(err error) bool {
	var f *ParseFailure
	return errors.As(err, &f) && f.Kind == KindSchema
}

// IsSyntaxError reports whether err is a ParseFailure of kind syntax.
func IsSyntaxError(err error) bool {
	var f *ParseFailure
	return errors.As(err, &f) && f.Kind == KindSyntax
}

type validator interface {
	Validate() error
}

// Parse decodes raw into T. The result has passed the shape's JSON Schema and,
// when T implements Validate, its cross-field checks.
func Parse[T any](raw string, shape Shape) (T, error) {
	var out T

	span, value, err := Decode(raw, shape.Container)
	if err != nil {
		return out, shape.failure(KindSyntax, err, raw)
	}

	if err := shape.validate(value); err != nil {
		return out, shape.failure(KindSchema, err, raw)
	}

	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return out, shape.failure(KindSchema, err, raw)
	}
	if v, ok := any(out).(validator); ok {
		if err := v.Validate(); err != nil {
			return out, shape.failure(KindSchema, err, raw)
		}
	}
	return out, nil
}

// Decode returns the JSON text that was accepted and its generic value. It
// tries the fence-stripped text first, then the first-open/last-close span of
// the expected container.
func Decode(raw string, container Container) (string, any, error) {
	text := StripFence(raw)

	value, strictErr := strictDecode(text)
	if strictErr == nil {
		return text, value, nil
	}

	span, ok := salvageSpan(text, container)
	if !ok {
		return "", nil, strictErr
	}
	value, err := strictDecode(span)
	if err != nil {
		return "", nil, fmt.Errorf("%w (salvage: %v)", strictErr, err)
	}
	return span, value, nil
}

// StripFence trims whitespace and removes a leading ``` fence with its optional
// language tag, and the closing fence when present. A completion cut off at
// the token limit may lack the closing fence.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	body := text[len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLangTag(body[:nl]) {
		body = body[nl+1:]
	} else {
		body = strings.TrimLeftFunc(body, isTagRune)
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, fence)
	return strings.TrimSpace(body)
}

func isLangTag(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if !isTagRune(r) {
			return false
		}
	}
	return true
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+' || r == '.'
}

func strictDecode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func salvageSpan(text string, c Container) (string, bool) {
	open, closing := c.delims()
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Excerpt returns at most MaxExcerptRunes runes of s, trimmed.
func Excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxExcerptRunes {
		return s
	}
	var b bytes.Buffer
	n := 0
	for _, r := range s {
		if n == MaxExcerptRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
