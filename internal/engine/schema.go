package engine

import "github.com/tatianab/backrooms/internal/models"

// Schema is a JSON-Schema-like description of the structured output the
// generator must return.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

func str() *Schema     { return &Schema{Type: "string"} }
func boolean() *Schema { return &Schema{Type: "boolean"} }

func enum[T ~string](values []T) *Schema {
	s := &Schema{Type: "string"}
	for _, v := range values {
		s.Enum = append(s.Enum, string(v))
	}
	return s
}

// EventSchema describes a generated event.
func EventSchema() *Schema {
	consequence := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"type":        enum([]models.ConsequenceType{models.ConsequenceStatChange, models.ConsequenceFactionRep}),
			"key":         str(),
			"value":       {Type: "number"},
			"description": str(),
		},
		Required: []string{"type", "key", "value"},
	}
	choice := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"text":         str(),
			"type":         enum(models.ChoiceTypes),
			"consequences": {Type: "array", Items: consequence},
		},
		Required: []string{"text", "type", "consequences"},
	}
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"title":                  str(),
			"description":            str(),
			"type":                   enum(models.EventTypes),
			"isScpZone":              boolean(),
			"environmentalHazards":   {Type: "array", Items: str()},
			"entityPresent":          boolean(),
			"entityName":             str(),
			"entityType":             str(),
			"entityDescription":      str(),
			"entityThreatLevel":      str(),
			"environmentDescription": str(),
			"temperature":            str(),
			"humidity":               str(),
			"lighting":               str(),
			"choices": {
				Type:        "array",
				Description: "at most 4 choices",
				Items:       choice,
			},
		},
		Required: []string{"title", "description", "type", "choices"},
	}
}
