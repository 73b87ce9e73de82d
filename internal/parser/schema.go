package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const extractionSchema = `{
	"type": "object",
	"required": ["line_items"],
	"properties": {
		"supplier_name": {"type": ["string", "null"]},
		"line_items": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"item_description": {"type": ["string", "null"]},
					"description": {"type": ["string", "null"]},
					"manufacturer_part_number": {"type": ["string", "null"]},
					"quantity": {"type": ["number", "string", "null"]},
					"original_uom": {"type": ["string", "null"]},
					"unit_price": {"type": ["number", "string", "null"]},
					"extended_price": {"type": ["number", "string", "null"]}
				}
			}
		}
	}
}`

const lookupSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"canonical_uom": {"type": ["string", "null"]},
			"detected_pack_quantity": {"type": ["integer", "number", "null"]},
			"confidence": {"type": ["number", "null"]},
			"escalation": {"type": ["boolean", "null"]}
		}
	}
}`

var (
	compiledExtraction = mustCompile("extraction.json", extractionSchema)
	compiledLookup     = mustCompile("lookup.json", lookupSchema)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// ValidateExtraction checks an extraction payload against its schema before decoding.
func ValidateExtraction(data []byte) error {
	return validate(compiledExtraction, data)
}

// ValidateLookupBatch checks a batched resolution payload against its schema.
func ValidateLookupBatch(data []byte) error {
	return validate(compiledLookup, data)
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
