package agent

import "encoding/json"

// Schema declares the output shape required from an agent call. It is a
// deliberately small subset of JSON Schema: the fields the Gemini
// responseJsonSchema config accepts, nothing more.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Object builds an object schema.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}

// String builds a string schema.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// Number builds a number schema.
func Number(description string) *Schema {
	return &Schema{Type: "number", Description: description}
}

// Boolean builds a boolean schema.
func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Array builds an array schema.
func Array(items *Schema, description string) *Schema {
	return &Schema{Type: "array", Items: items, Description: description}
}

// Raw marshals the schema for the request body.
func (s *Schema) Raw() json.RawMessage {
	data, err := json.Marshal(s)
	if err != nil {
		// Schema values are built from literals; marshal cannot fail.
		return nil
	}
	return data
}
