package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Definition describes one gateway tool: its name, a description shown to
// the language model, and the JSON Schema for its arguments.
type Definition struct {
	Name        ToolName
	Description string
	Parameters  map[string]any
}

// Definitions returns the fixed tool catalog in a stable order.
// The same schemas drive oracle tool declarations, planner validation,
// and gateway-side argument checks.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolSearchRestaurants,
			Description: "Search for restaurants in a location. Returns rated results with estimated cost per person.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "City or location name",
					},
					"food_type": map[string]any{
						"type":        "string",
						"description": "Type of cuisine or food (optional)",
					},
				},
				"required":             []any{"location"},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolGetActivities,
			Description: "Get top-rated activities and attractions in a location, with estimated cost per person.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "City or location name",
					},
				},
				"required":             []any{"location"},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolSearchHotels,
			Description: "Search for hotels and accommodations in a location, with estimated cost per night.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "City or location name",
					},
					"budget_usd": map[string]any{
						"type":        "number",
						"minimum":     0,
						"description": "Maximum price per night in USD (optional)",
					},
				},
				"required":             []any{"location"},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolUpdateMap,
			Description: "Update the map with a route through locations visited in order. Use when users describe a trip, route, or multiple destinations.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"waypoints": map[string]any{
						"type":        "array",
						"minItems":    1,
						"items":       map[string]any{"type": "string", "minLength": 1},
						"description": "Locations to visit in order, e.g. [\"Oakland\", \"Berkeley\"]",
					},
					"route_type": map[string]any{
						"type":        "string",
						"enum":        []any{"driving", "walking", "transit"},
						"description": "Type of route (default driving)",
					},
				},
				"required":             []any{"waypoints"},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolProposePayment,
			Description: "Quote a booking payment for the current trip. Returns the USD amount and vendor recipient. The user must verbally confirm before any payment is handed off.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"amount_usd": map[string]any{
						"type":             "number",
						"exclusiveMinimum": 0,
						"description":      "Total booking amount in USD",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "What the payment covers, e.g. \"2 nights at Hotel Vitale\"",
					},
				},
				"required":             []any{"amount_usd"},
				"additionalProperties": false,
			},
		},
	}
}

// definitionIndex maps tool names to definitions and compiled schemas.
// Built once at init; the catalog is fixed for the life of the process.
var (
	definitionIndex = map[ToolName]Definition{}
	schemaIndex     = map[ToolName]*gojsonschema.Schema{}
)

func init() {
	for _, def := range Definitions() {
		definitionIndex[def.Name] = def

		raw, err := json.Marshal(def.Parameters)
		if err != nil {
			panic(fmt.Sprintf("catalog: invalid parameter schema for %s: %v", def.Name, err))
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("catalog: cannot compile schema for %s: %v", def.Name, err))
		}
		schemaIndex[def.Name] = schema
	}
}

func lookupDefinition(name ToolName) (Definition, bool) {
	def, ok := definitionIndex[name]
	return def, ok
}

// Lookup returns the definition for a tool name.
func Lookup(name ToolName) (Definition, error) {
	def, ok := lookupDefinition(name)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return def, nil
}

// ValidateArgs checks arguments against the tool's declared schema.
// Returns ErrUnknownTool for names outside the fixed set, or a descriptive
// error listing the schema violations.
func ValidateArgs(name ToolName, args map[string]any) error {
	schema, ok := schemaIndex[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("catalog: validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	detail := ""
	for i, desc := range result.Errors() {
		if i > 0 {
			detail += "; "
		}
		detail += desc.String()
	}
	return fmt.Errorf("catalog: invalid arguments for %s: %s", name, detail)
}
