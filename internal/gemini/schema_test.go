package gemini

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

type createTaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func TestConvertSchemaFromStruct(t *testing.T) {
	src, err := jsonschema.For[createTaskInput](nil)
	if err != nil {
		t.Fatalf("jsonschema.For() error: %v", err)
	}

	got, err := convertSchema(src)
	if err != nil {
		t.Fatalf("convertSchema() error: %v", err)
	}

	if got.Type != genai.TypeObject {
		t.Errorf("Type = %v, want %v", got.Type, genai.TypeObject)
	}
	for _, name := range []string{"title", "description", "priority", "tags"} {
		if got.Properties[name] == nil {
			t.Errorf("property %q missing", name)
		}
	}
	if p := got.Properties["title"]; p != nil && p.Type != genai.TypeString {
		t.Errorf("title type = %v, want %v", p.Type, genai.TypeString)
	}
	if p := got.Properties["tags"]; p != nil {
		if p.Type != genai.TypeArray {
			t.Errorf("tags type = %v, want %v", p.Type, genai.TypeArray)
		}
		if p.Items == nil || p.Items.Type != genai.TypeString {
			t.Errorf("tags items = %+v, want string items", p.Items)
		}
	}

	var hasTitle bool
	for _, r := range got.Required {
		if r == "title" {
			hasTitle = true
		}
	}
	if !hasTitle {
		t.Errorf("Required = %v, want it to include title", got.Required)
	}
}

func TestConvertSchemaEnum(t *testing.T) {
	src := &jsonschema.Schema{
		Type: "string",
		Enum: []any{"low", "medium", "high"},
	}

	got, err := convertSchema(src)
	if err != nil {
		t.Fatalf("convertSchema() error: %v", err)
	}
	if len(got.Enum) != 3 || got.Enum[0] != "low" {
		t.Errorf("Enum = %v, want the three levels", got.Enum)
	}
}

func TestConvertSchemaNil(t *testing.T) {
	got, err := convertSchema(nil)
	if err != nil {
		t.Fatalf("convertSchema(nil) error: %v", err)
	}
	if got != nil {
		t.Errorf("convertSchema(nil) = %+v, want nil", got)
	}
}

func TestSchemaTypeFallsBackToTypes(t *testing.T) {
	tests := []struct {
		name string
		in   *jsonschema.Schema
		want genai.Type
	}{
		{"single type", &jsonschema.Schema{Type: "string"}, genai.TypeString},
		{"array via types", &jsonschema.Schema{Types: []string{"array"}}, genai.TypeArray},
		{"nullable string", &jsonschema.Schema{Types: []string{"null", "string"}}, genai.TypeString},
		{"no type at all", &jsonschema.Schema{}, genai.TypeUnspecified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertSchema(tt.in)
			if err != nil {
				t.Fatalf("convertSchema() error: %v", err)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConvertTypeMapping(t *testing.T) {
	tests := []struct {
		in   string
		want genai.Type
	}{
		{"object", genai.TypeObject},
		{"array", genai.TypeArray},
		{"string", genai.TypeString},
		{"number", genai.TypeNumber},
		{"integer", genai.TypeInteger},
		{"boolean", genai.TypeBoolean},
		{"", genai.TypeUnspecified},
		{"null", genai.TypeUnspecified},
	}
	for _, tt := range tests {
		if got := convertType(tt.in); got != tt.want {
			t.Errorf("convertType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsCorruptedState(t *testing.T) {
	err := genai.APIError{
		Code:    400,
		Message: "Invalid argument: required oneof field 'data' must have one initialized field",
	}
	if !isCorruptedState(err) {
		t.Error("isCorruptedState() = false for the corrupted-history rejection")
	}

	other := genai.APIError{Code: 429, Message: "Resource exhausted"}
	if isCorruptedState(other) {
		t.Error("isCorruptedState() = true for an unrelated API error")
	}
}
