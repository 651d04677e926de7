package parser

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Container is the top-level JSON type a shape expects.
type Container int

const (
	Object Container = iota
	Array
)

func (c Container) delims() (byte, byte) {
	if c == Array {
		return '[', ']'
	}
	return '{', '}'
}

func (c Container) String() string {
	if c == Array {
		return "array"
	}
	return "object"
}

// Shape describes the structure a completion must decode into.
type Shape struct {
	Name       string
	Container  Container
	Definition map[string]any
}

// schemaCache holds compiled schemas by shape name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

func (s Shape) compiled() (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a generic JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(s.Name, compiled)
	return compiled, nil
}

func (s Shape) validate(value any) error {
	compiled, err := s.compiled()
	if err != nil {
		return fmt.Errorf("schema %q: %w", s.Name, err)
	}
	return compiled.Validate(value)
}

func (s Shape) failure(kind FailureKind, err error, raw string) *ParseFailure {
	return &ParseFailure{Shape: s.Name, Kind: kind, Err: err, Excerpt: Excerpt(raw)}
}

var optionLabels = []any{"A", "B", "C", "D"}

var quizItemSchema = map[string]any{
	"type":     "object",
	"required": []any{"question", "options", "correct_answer", "explanation"},
	"properties": map[string]any{
		"question": map[string]any{"type": "string", "minLength": 1},
		"options": map[string]any{
			"type":                 "object",
			"required":             optionLabels,
			"additionalProperties": false,
			"properties": map[string]any{
				"A": map[string]any{"type": "string"},
				"B": map[string]any{"type": "string"},
				"C": map[string]any{"type": "string"},
				"D": map[string]any{"type": "string"},
			},
		},
		"correct_answer": map[string]any{"type": "string", "enum": optionLabels},
		"explanation": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "string", "minLength": 1},
				map[string]any{
					"type":     "object",
					"required": []any{"correct"},
					"properties": map[string]any{
						"correct": map[string]any{"type": "string", "minLength": 1},
						"wrong": map[string]any{
							"type":                 "object",
							"additionalProperties": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
}

// RoadmapShape matches models.Roadmap.
var RoadmapShape = Shape{
	Name:      "roadmap",
	Container: Object,
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"Topic Name", "Description", "Modules"},
		"properties": map[string]any{
			"Topic Name":  map[string]any{"type": "string"},
			"Description": map[string]any{"type": "string"},
			"Modules": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"Subtopic", "Time", "Short Description", "Quiz"},
					"properties": map[string]any{
						"Subtopic":          map[string]any{"type": "string", "minLength": 1},
						"Time":              map[string]any{"type": "string"},
						"Short Description": map[string]any{"type": "string"},
						"Quiz": map[string]any{
							"type":     "object",
							"required": []any{"Description"},
							"properties": map[string]any{
								"Description": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	},
}

// ModuleDetailsShape matches models.ModuleDetails.
var ModuleDetailsShape = Shape{
	Name:      "module_details",
	Container: Object,
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"content", "quizzes"},
		"properties": map[string]any{
			"content": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"title", "explanation"},
					"properties": map[string]any{
						"title":       map[string]any{"type": "string"},
						"explanation": map[string]any{"type": "string"},
						"codeExample": map[string]any{"type": []any{"string", "null"}},
					},
				},
			},
			"quizzes": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    quizItemSchema,
			},
		},
	},
}

// QuizItemsShape matches models.QuizItems.
var QuizItemsShape = Shape{
	Name:      "quiz_items",
	Container: Array,
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    quizItemSchema,
	},
}

// SearchTermsShape is a list of search strings; an empty list is valid.
var SearchTermsShape = Shape{
	Name:      "search_terms",
	Container: Array,
	Definition: map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	},
}
