package intent

import (
	"strings"
	"unicode"

	"github.com/mission42/constellation-intent/internal/models"
)

const DefaultWindow = 6

// ConfirmationTerms signal that the user agreed to create the constellation.
var ConfirmationTerms = []string{
	"yes", "generate", "proceed", "create", "go ahead",
	"make it", "do it", "start", "confirm", "build",
}

// Signals is the diagnostic breakdown behind a readiness decision.
type Signals struct {
	HasDigit          bool `json:"hasDigit"`
	MentionsSatellite bool `json:"mentionsSatellite"`
	MentionsPlane     bool `json:"mentionsPlane"`
	MentionsAltitude  bool `json:"mentionsAltitude"`
	Confirmed         bool `json:"confirmed"`
	Ready             bool `json:"ready"`
}

// Gate decides from the recent transcript whether the creation tool may be
// exposed to the model. It is re-derived every turn; there is no session state.
type Gate struct {
	Window int
}

func NewGate(window int) Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return Gate{Window: window}
}

func (g Gate) Ready(messages []models.ConversationMessage) bool {
	return g.Evaluate(messages).Ready
}

func (g Gate) Evaluate(messages []models.ConversationMessage) Signals {
	window := g.Window
	if window <= 0 {
		window = DefaultWindow
	}
	if len(messages) > window {
		messages = messages[len(messages)-window:]
	}

	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = strings.ToLower(m.Content)
	}
	text := strings.Join(parts, " ")

	s := Signals{
		HasDigit:          strings.IndexFunc(text, unicode.IsDigit) >= 0,
		MentionsSatellite: strings.Contains(text, "satellite"),
		MentionsPlane:     strings.Contains(text, "plane") || strings.Contains(text, "orbital"),
		MentionsAltitude:  containsAny(text, "altitude", "km", "height"),
		Confirmed:         containsAny(text, ConfirmationTerms...),
	}
	s.Ready = s.HasDigit &&
		(s.MentionsSatellite || s.MentionsPlane || s.MentionsAltitude) &&
		s.Confirmed
	return s
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
