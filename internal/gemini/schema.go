package gemini

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// convertSchema translates a JSON schema into the Gemini function
// parameter schema. Only the subset the Gemini API understands is
// carried over; a nil input yields a nil output, which the API accepts
// for parameterless tools.
func convertSchema(s *jsonschema.Schema) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}

	out := &genai.Schema{
		Type:        convertType(schemaType(s)),
		Description: s.Description,
		Format:      s.Format,
		Required:    s.Required,
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			converted, err := convertSchema(prop)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			out.Properties[name] = converted
		}
	}

	if s.Items != nil {
		items, err := convertSchema(s.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	}

	for _, v := range s.Enum {
		str, ok := v.(string)
		if !ok {
			str = fmt.Sprint(v)
		}
		out.Enum = append(out.Enum, str)
	}

	return out, nil
}

// schemaType picks the effective type. Generated schemas express array
// and nullable types through Types rather than Type; the first non-null
// entry wins.
func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}
	for _, t := range s.Types {
		if t != "null" {
			return t
		}
	}
	return ""
}

func convertType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
