// Package intent decides when a conversation is ready for creation and turns
// model output into constellation candidates.
package intent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/llm"
)

const (
	StrategyStructured = "structured"
	StrategyPattern    = "pattern"
)

// ErrNoMatch means the model signalled creation but no parameters could be read.
var ErrNoMatch = errors.New("intent: no constellation parameters found")

// Candidate is one creation attempt found in the model output. Err is set when
// the attempt was malformed before any domain check could run.
type Candidate struct {
	ToolCallID string
	ToolName   string
	Params     constellation.Candidate
	Err        error
}

// Extraction is the result of reading one generation.
type Extraction struct {
	Text       string // full reply for the user, trigger markers removed
	Preamble   string // part of the reply shown next to creation outcomes
	Candidates []Candidate
}

// Extractor is one way of getting a creation request out of the model. One is
// selected per deployment.
type Extractor interface {
	Name() string
	ExposesTools() bool
	SystemPrompt() string
	Extract(gen *llm.Generation) (*Extraction, error)
}

func NewExtractor(strategy string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyStructured:
		return NewStructuredExtractor()
	case StrategyPattern:
		return NewPatternExtractor(), nil
	default:
		return nil, fmt.Errorf("intent: unsupported extraction strategy %q", strategy)
	}
}
