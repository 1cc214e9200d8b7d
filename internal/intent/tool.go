package intent

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/llm"
)

const ToolName = "create_constellation"

const toolDescription = "Create a satellite constellation in Low Earth Orbit. " +
	"Only call this after the user has explicitly confirmed the number of satellites, " +
	"the number of orbital planes and the altitude."

// ToolDefinition is what the model sees. Ranges are hints; the server checks
// them again with constellation.Validate.
func ToolDefinition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolName,
		Description: toolDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"numSatellites": map[string]any{
					"type":        "integer",
					"description": "Total number of satellites.",
					"minimum":     constellation.MinCount,
					"maximum":     constellation.MaxSatellites,
				},
				"numPlanes": map[string]any{
					"type":        "integer",
					"description": "Number of orbital planes, at most the number of satellites.",
					"minimum":     constellation.MinCount,
					"maximum":     constellation.MaxPlanes,
				},
				"altitudes": map[string]any{
					"type":        "array",
					"description": "Altitude in km for each plane, or a single value applied to every plane.",
					"items": map[string]any{
						"type":    "number",
						"minimum": constellation.MinAltitudeKm,
						"maximum": constellation.MaxAltitudeKm,
					},
					"minItems": 1,
					"maxItems": constellation.MaxPlanes,
				},
			},
			"required": []string{"numSatellites", "numPlanes", "altitudes"},
		},
	}
}

// argumentShapeSchema only checks types and presence. Range failures must reach
// constellation.Validate so the user gets the named constraint and counts below
// one are clamped.
const argumentShapeSchema = `{
	"type": "object",
	"properties": {
		"numSatellites": {"type": "number"},
		"numPlanes": {"type": "number"},
		"altitudes": {
			"type": "array",
			"items": {"type": "number"},
			"minItems": 1
		},
		"altitude": {"type": "number"}
	},
	"required": ["numSatellites", "numPlanes"],
	"anyOf": [
		{"required": ["altitudes"]},
		{"required": ["altitude"]}
	]
}`

func compileShapeSchema() (*jsonschema.Schema, error) {
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(argumentShapeSchema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("create_constellation.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("create_constellation.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
