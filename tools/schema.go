package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// reflector is configured for tool parameter schemas.
// DoNotReference inlines all definitions, since providers reject $ref.
var reflector = &jsonschema.Reflector{
	DoNotReference: true,
}

// GenerateSchema creates a JSON Schema from a Go type. The type should be a
// struct with json and jsonschema tags:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"required,description=City name"`
//	    Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
//
//	schema, err := tools.GenerateSchema[WeatherArgs]()
func GenerateSchema[T any]() (json.RawMessage, error) {
	var zero T
	schema := reflector.Reflect(&zero)
	return json.Marshal(schema)
}

// MustGenerateSchema is like GenerateSchema but panics on error.
// Useful for package-level tool definitions.
func MustGenerateSchema[T any]() json.RawMessage {
	schema, err := GenerateSchema[T]()
	if err != nil {
		panic(err)
	}
	return schema
}
