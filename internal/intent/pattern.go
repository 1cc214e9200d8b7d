package intent

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/llm"
	"github.com/mission42/constellation-intent/internal/prompts"
)

const (
	// A number never starts inside another number, so "1,200" cannot yield "200".
	boundary = `(?:^|[^\d.,])`

	// Thousands may be grouped with commas or spaces: "1,200", "1 200".
	count  = `(\d{1,3}(?:[, \x{00A0}\x{202F}]\d{3})+|\d+)`
	amount = `(\d{1,3}(?:[, \x{00A0}\x{202F}]\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
)

var (
	// "<N> satellites across <M> orbital planes at altitude <A> km"
	primaryPattern = regexp.MustCompile(
		`(?i)` + boundary + count + `\s+satellites?\s+across\s+` + count +
			`\s+orbital\s+planes?\s+at\s+(?:an\s+)?altitude\s+(?:of\s+)?` + amount + `\s*km`)

	// Same three numbers in the same order, each close to its keyword.
	fallbackPattern = regexp.MustCompile(
		`(?is)` + boundary + count + `\s*(?:[a-z-]+\s+){0,2}satellites?\b.{0,60}?` +
			boundary + count + `\s*(?:[a-z-]+\s+){0,2}planes?\b.{0,60}?` +
			boundary + amount + `\s*(?:km|kilomet)`)

	separators = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "")

	markerPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prompts.TriggerMarker))
)

// PatternExtractor looks for the trigger marker in free text and reads the
// parameters from the reply with regular expressions.
type PatternExtractor struct{}

var _ Extractor = PatternExtractor{}

func NewPatternExtractor() PatternExtractor { return PatternExtractor{} }

func (PatternExtractor) Name() string { return StrategyPattern }

func (PatternExtractor) ExposesTools() bool { return false }

func (PatternExtractor) SystemPrompt() string { return prompts.PatternSystemPrompt }

func (PatternExtractor) Extract(gen *llm.Generation) (*Extraction, error) {
	if gen == nil {
		return nil, errors.New("intent: generation must not be nil")
	}

	loc := markerPattern.FindStringIndex(gen.Text)
	out := &Extraction{Text: strings.TrimSpace(markerPattern.ReplaceAllString(gen.Text, ""))}
	if loc == nil {
		return out, nil
	}
	// The canonical sentence after the marker is meant for us, not the user.
	out.Preamble = strings.TrimSpace(markerPattern.ReplaceAllString(gen.Text[:loc[0]], ""))

	scope := gen.Text[loc[1]:]
	if !strings.ContainsAny(scope, "0123456789") {
		scope = gen.Text
	}

	params, err := ExtractParameters(scope)
	if err != nil {
		return out, err
	}
	out.Candidates = []Candidate{{Params: params}}
	return out, nil
}

// ExtractParameters applies the primary pattern, then the fallback.
func ExtractParameters(text string) (constellation.Candidate, error) {
	m := primaryPattern.FindStringSubmatch(text)
	if m == nil {
		m = fallbackPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return constellation.Candidate{}, ErrNoMatch
	}

	sats, err := strconv.Atoi(separators.Replace(m[1]))
	if err != nil {
		return constellation.Candidate{}, ErrNoMatch
	}
	planes, err := strconv.Atoi(separators.Replace(m[2]))
	if err != nil {
		return constellation.Candidate{}, ErrNoMatch
	}
	altitude, err := strconv.ParseFloat(separators.Replace(m[3]), 64)
	if err != nil {
		return constellation.Candidate{}, ErrNoMatch
	}

	return constellation.Candidate{
		NumSatellites: float64(sats),
		NumPlanes:     float64(planes),
		Altitudes:     []float64{altitude},
	}, nil
}
