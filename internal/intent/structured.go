package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/llm"
	"github.com/mission42/constellation-intent/internal/prompts"
)

// ArgumentError reports tool arguments that do not have the declared shape.
type ArgumentError struct {
	Detail string
}

func (e *ArgumentError) Error() string {
	return "intent: malformed tool arguments: " + e.Detail
}

// StructuredExtractor reads create_constellation tool calls.
type StructuredExtractor struct {
	schema *jsonschema.Schema
}

var _ Extractor = (*StructuredExtractor)(nil)

type toolArguments struct {
	NumSatellites float64   `json:"numSatellites"`
	NumPlanes     float64   `json:"numPlanes"`
	Altitudes     []float64 `json:"altitudes"`
	Altitude      *float64  `json:"altitude"`
}

func NewStructuredExtractor() (*StructuredExtractor, error) {
	schema, err := compileShapeSchema()
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	return &StructuredExtractor{schema: schema}, nil
}

func (e *StructuredExtractor) Name() string { return StrategyStructured }

func (e *StructuredExtractor) ExposesTools() bool { return true }

func (e *StructuredExtractor) SystemPrompt() string { return prompts.StructuredSystemPrompt }

func (e *StructuredExtractor) Extract(gen *llm.Generation) (*Extraction, error) {
	if gen == nil {
		return nil, errors.New("intent: generation must not be nil")
	}

	out := &Extraction{Text: gen.Text, Preamble: gen.Text}
	for _, call := range gen.ToolCalls {
		c := Candidate{ToolCallID: call.ID, ToolName: call.Name}
		if call.Name != ToolName {
			c.Err = &ArgumentError{Detail: fmt.Sprintf("unknown tool %q", call.Name)}
			out.Candidates = append(out.Candidates, c)
			continue
		}
		c.Params, c.Err = e.decode(call.Arguments)
		out.Candidates = append(out.Candidates, c)
	}
	return out, nil
}

func (e *StructuredExtractor) decode(raw json.RawMessage) (constellation.Candidate, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return constellation.Candidate{}, &ArgumentError{Detail: err.Error()}
	}
	if err := e.schema.Validate(inst); err != nil {
		return constellation.Candidate{}, &ArgumentError{Detail: err.Error()}
	}

	var args toolArguments
	if err := json.Unmarshal(raw, &args); err != nil {
		return constellation.Candidate{}, &ArgumentError{Detail: err.Error()}
	}

	altitudes := args.Altitudes
	if len(altitudes) == 0 && args.Altitude != nil {
		altitudes = []float64{*args.Altitude}
	}

	return constellation.Candidate{
		NumSatellites: args.NumSatellites,
		NumPlanes:     args.NumPlanes,
		Altitudes:     altitudes,
	}, nil
}
