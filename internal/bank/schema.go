package bank

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/logiprep/internal/question"
)

const schemaURL = "schema://logiprep/bank.json"

// bankSchema describes a question bank file. Topic names are checked by
// topic.Parse afterwards, since they match case-insensitively.
var bankSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/question"},
		},
		"passages": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"topic", "text", "questions"},
				"properties": map[string]any{
					"topic": map[string]any{"type": "string", "minLength": 1},
					"text":  map[string]any{"type": "string", "minLength": 1},
					"questions": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    map[string]any{"$ref": "#/$defs/passageQuestion"},
					},
				},
				"additionalProperties": false,
			},
		},
	},
	"additionalProperties": false,
	"$defs": map[string]any{
		"question": map[string]any{
			"type":     "object",
			"required": []any{"id", "topic", "prompt", "options", "correct"},
			"properties": map[string]any{
				"id":          map[string]any{"type": "string", "minLength": 1},
				"topic":       map[string]any{"type": "string", "minLength": 1},
				"passage":     map[string]any{"type": "string"},
				"prompt":      map[string]any{"type": "string", "minLength": 1},
				"options":     optionsSchema,
				"correct":     map[string]any{"type": "integer", "minimum": 0},
				"explanation": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
		"passageQuestion": map[string]any{
			"type":     "object",
			"required": []any{"id", "prompt", "options", "correct"},
			"properties": map[string]any{
				"id":          map[string]any{"type": "string", "minLength": 1},
				"prompt":      map[string]any{"type": "string", "minLength": 1},
				"options":     optionsSchema,
				"correct":     map[string]any{"type": "integer", "minimum": 0},
				"explanation": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
}

var optionsSchema = map[string]any{
	"type":        "array",
	"minItems":    2,
	"maxItems":    question.MaxOptions,
	"uniqueItems": true,
	"items":       map[string]any{"type": "string", "minLength": 1},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants the plain JSON value tree.
		raw, err := json.Marshal(bankSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
