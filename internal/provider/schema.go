package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jannisai/llmsdk/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateTools checks that every tool's Parameters field is a
// well-formed JSON Schema object, failing fast at request-build time
// rather than letting a malformed schema reach the provider and come
// back as an opaque 400.
func ValidateTools(tools []types.Tool) error {
	for _, t := range tools {
		if len(t.Parameters) == 0 {
			continue
		}
		if err := validateSchemaDocument(t.Name, t.Parameters); err != nil {
			return err
		}
	}
	return nil
}

func validateSchemaDocument(toolName string, raw json.RawMessage) error {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("tool %q: parameters is not valid JSON: %w", toolName, err)
	}
	resource := "mem://tools/" + toolName
	if err := c.AddResource(resource, doc); err != nil {
		return fmt.Errorf("tool %q: invalid JSON Schema: %w", toolName, err)
	}
	if _, err := c.Compile(resource); err != nil {
		return fmt.Errorf("tool %q: invalid JSON Schema: %w", toolName, err)
	}
	return nil
}
