package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/teslashibe/go-nomad/pkg/catalog"
	"github.com/teslashibe/go-nomad/pkg/oracle"
)

// SystemPrompt is the concierge persona and operating rules given to the
// oracle at the start of every session.
const SystemPrompt = `You are Nomad, a voice-first travel concierge in a shared room.

You help travelers find restaurants, activities, and hotels, plan routes,
manage a trip itinerary, and settle bookings with a crypto payment the
user signs in their own wallet.

SPEECH RULES (you are heard, not read):
- Be extremely concise. Mention at most 1-3 top options per search.
- For each option say only the name, the rating in words ("four point
  five stars"), and the rough cost ("around fifty five dollars").
- One sentence per option. No addresses or URLs unless asked.

TOOL RULES:
- When a user mentions a city, search it immediately; speak about the
  results while the map updates alongside.
- For route requests, extract the location names and call update_map
  with waypoints as an ordered array of names, never coordinates.
- For bookings, call propose_payment with the total, then ask the user
  to confirm out loud. Call confirm_payment ONLY after they have said
  yes; call cancel_payment when they decline.
- Manage the itinerary with add_to_itinerary, remove_from_itinerary,
  and clear_itinerary when the user asks.

Tone: helpful, enthusiastic, short.`

// Local intents the controller handles without a remote call.
const (
	IntentConfirmPayment      = "confirm_payment"
	IntentCancelPayment       = "cancel_payment"
	IntentAddToItinerary      = "add_to_itinerary"
	IntentRemoveFromItinerary = "remove_from_itinerary"
	IntentClearItinerary      = "clear_itinerary"
)

// localIntents declares the controller-handled tools offered to the
// oracle alongside the remote catalog.
var localIntents = []oracle.Tool{
	{
		Name:        IntentConfirmPayment,
		Description: "Execute the pending payment after the user has verbally confirmed. Takes no arguments.",
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
	},
	{
		Name:        IntentCancelPayment,
		Description: "Cancel the pending payment after the user declines. Takes no arguments.",
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
	},
	{
		Name:        IntentAddToItinerary,
		Description: "Add an item to the user's trip itinerary.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item_name": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Name of the place to add",
				},
				"item_type": map[string]any{
					"type":        "string",
					"enum":        []any{"restaurant", "hotel", "activity"},
					"description": "Kind of item",
				},
				"estimated_cost": map[string]any{
					"type":        "number",
					"minimum":     0,
					"description": "Estimated cost in USD",
				},
				"location": map[string]any{
					"type":        "string",
					"description": "City or area the item is in",
				},
			},
			"required":             []any{"item_name"},
			"additionalProperties": false,
		},
	},
	{
		Name:        IntentRemoveFromItinerary,
		Description: "Remove an item from the user's trip itinerary by name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item_name": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Name of the item to remove",
				},
			},
			"required":             []any{"item_name"},
			"additionalProperties": false,
		},
	},
	{
		Name:        IntentClearItinerary,
		Description: "Clear all items from the user's trip itinerary. Takes no arguments.",
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
	},
}

// intentSchemas holds compiled argument schemas for the local intents.
var intentSchemas = map[string]*gojsonschema.Schema{}

func init() {
	for _, t := range localIntents {
		raw, err := json.Marshal(t.Parameters)
		if err != nil {
			panic(fmt.Sprintf("agent: invalid intent schema for %s: %v", t.Name, err))
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("agent: cannot compile intent schema for %s: %v", t.Name, err))
		}
		intentSchemas[t.Name] = schema
	}
}

// validateIntentArgs checks local intent arguments against the declared
// schema, mirroring the catalog-side validation for remote tools.
func validateIntentArgs(name string, args map[string]any) error {
	schema, ok := intentSchemas[name]
	if !ok {
		return fmt.Errorf("agent: unknown intent %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("agent: validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("agent: invalid arguments for %s: %s", name, strings.Join(details, "; "))
}

// isLocalIntent reports whether name is handled by the controller.
func isLocalIntent(name string) bool {
	for _, t := range localIntents {
		if t.Name == name {
			return true
		}
	}
	return false
}

// oracleTools builds the complete tool set offered to the oracle: the
// remote catalog operations plus the local intents.
func oracleTools() []oracle.Tool {
	defs := catalog.Definitions()
	tools := make([]oracle.Tool, 0, len(defs)+len(localIntents))
	for _, d := range defs {
		tools = append(tools, oracle.Tool{
			Name:        string(d.Name),
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return append(tools, localIntents...)
}
