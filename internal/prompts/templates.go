package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mission42/constellation-intent/internal/models"
)

// TriggerMarker is emitted by the model, in the pattern strategy, once the user confirmed.
const TriggerMarker = "[CREATE_CONSTELLATION]"

const baseInstructions = `You are Mission42, an AI assistant that helps users design satellite constellations in Low Earth Orbit (LEO).

Your job is to collect three parameters from the user:
1. Number of satellites (between 1 and 60)
2. Number of orbital planes (between 1 and 10, and never more than the number of satellites)
3. Altitude in kilometers (between 160 and 2000), either one altitude for all planes or one per plane

IMPORTANT RULES:
1. Ask for missing parameters one or two at a time, in plain language
2. When all parameters are known, summarize them and ask the user to confirm
3. Never create a constellation before the user explicitly confirms
4. If a value is out of range, explain the limit and ask again
5. Keep answers short and friendly`

// StructuredSystemPrompt is used when the create_constellation tool may be exposed.
const StructuredSystemPrompt = baseInstructions + `

TOOL USE:
When the user has confirmed the summary and the create_constellation tool is available, call it with
numSatellites, numPlanes and altitudes (one value per plane, or a single value for all planes).
Do not call the tool for any other reason.`

// PatternSystemPrompt is used by the text-trigger strategy.
const PatternSystemPrompt = baseInstructions + `

CREATION:
When the user has confirmed the summary, reply with the marker ` + TriggerMarker + ` followed by exactly this sentence:
"<N> satellites across <M> orbital planes at altitude <A> km"
Do not emit the marker before the user confirms.`

const FallbackMessage = "I didn't quite get that. Could you tell me how many satellites, how many orbital planes and which altitude (in km) you would like?"

const ReaskMessage = "I couldn't read the constellation parameters from our conversation. Could you restate them, for example: \"20 satellites across 5 orbital planes at 500 km\"?"

const RetryMessage = "Sorry, I couldn't create the constellation right now. Please try again in a moment by sending your confirmation once more."

const TimeoutMessage = "Sorry, I took too long to answer. Please send your last message again."

const RejectedPrefix = "I can't create that constellation yet: "

// BuildPrompt renders the system instructions followed by one "<role>: <content>" line per message.
func BuildPrompt(system string, messages []models.ConversationMessage) string {
	var builder strings.Builder

	builder.WriteString(system)
	for _, msg := range messages {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	return builder.String()
}

// RejectionMessage turns a validation reason into an assistant reply.
func RejectionMessage(reason string) string {
	return RejectedPrefix + reason + ". Could you adjust the parameters?"
}

// ConfirmationMessage is shown after the creation API accepted the request.
func ConfirmationMessage(req models.ConstellationRequest, constellationID string) string {
	msg := fmt.Sprintf("Constellation created: %d satellites across %d orbital planes at %s.",
		req.NumSatellites, req.NumPlanes, describeAltitudes(req.Altitudes))
	if constellationID != "" {
		msg += fmt.Sprintf(" Reference: %s.", constellationID)
	}
	return msg
}

func describeAltitudes(altitudes []float64) string {
	if len(altitudes) == 0 {
		return "an unspecified altitude"
	}

	uniform := true
	for _, a := range altitudes[1:] {
		if a != altitudes[0] {
			uniform = false
			break
		}
	}
	if uniform {
		return formatKm(altitudes[0])
	}

	parts := make([]string, len(altitudes))
	for i, a := range altitudes {
		parts[i] = formatKm(a)
	}
	return strings.Join(parts, ", ")
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " km"
}
