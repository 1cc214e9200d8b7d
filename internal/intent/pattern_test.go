package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/llm"
	"github.com/mission42/constellation-intent/internal/prompts"
)

func TestExtractParameters_Primary(t *testing.T) {
	got, err := ExtractParameters("Great! Creating 20 satellites across 5 orbital planes at altitude 500 km now.")
	require.NoError(t, err)
	require.Equal(t, constellation.Candidate{NumSatellites: 20, NumPlanes: 5, Altitudes: []float64{500}}, got)
}

func TestExtractParameters_Variants(t *testing.T) {
	cases := []struct {
		name string
		text string
		want constellation.Candidate
	}{
		{
			name: "case insensitive decimal altitude",
			text: "12 SATELLITES ACROSS 3 ORBITAL PLANES AT ALTITUDE 550.5 KM",
			want: constellation.Candidate{NumSatellites: 12, NumPlanes: 3, Altitudes: []float64{550.5}},
		},
		{
			name: "singular plane",
			text: "1 satellite across 1 orbital plane at altitude 400km",
			want: constellation.Candidate{NumSatellites: 1, NumPlanes: 1, Altitudes: []float64{400}},
		},
		{
			name: "fallback with adjectives",
			text: "20 LEO satellites spread over 5 orbital planes, each at 550 km",
			want: constellation.Candidate{NumSatellites: 20, NumPlanes: 5, Altitudes: []float64{550}},
		},
		{
			name: "fallback across lines",
			text: "Summary:\n- 24 satellites\n- 4 planes\n- altitude: 1200 kilometers",
			want: constellation.Candidate{NumSatellites: 24, NumPlanes: 4, Altitudes: []float64{1200}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractParameters(tc.text)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestExtractParameters_GroupedThousands(t *testing.T) {
	cases := []struct {
		name string
		text string
		want constellation.Candidate
	}{
		{
			name: "comma separated altitude",
			text: "20 satellites across 5 orbital planes at altitude 1,200 km",
			want: constellation.Candidate{NumSatellites: 20, NumPlanes: 5, Altitudes: []float64{1200}},
		},
		{
			name: "altitude of with comma",
			text: "20 satellites across 5 orbital planes at an altitude of 1,200 km",
			want: constellation.Candidate{NumSatellites: 20, NumPlanes: 5, Altitudes: []float64{1200}},
		},
		{
			name: "space separated altitude",
			text: "24 satellites in 3 planes at 1 200 km",
			want: constellation.Candidate{NumSatellites: 24, NumPlanes: 3, Altitudes: []float64{1200}},
		},
		{
			name: "grouped altitude with decimals",
			text: "6 satellites over 2 planes at 1,250.5 km",
			want: constellation.Candidate{NumSatellites: 6, NumPlanes: 2, Altitudes: []float64{1250.5}},
		},
		{
			name: "comma separated satellite count",
			text: "1,000 satellites across 5 orbital planes at altitude 500 km",
			want: constellation.Candidate{NumSatellites: 1000, NumPlanes: 5, Altitudes: []float64{500}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractParameters(tc.text)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestExtractParameters_NeverReadsPartOfANumber(t *testing.T) {
	for _, text := range []string{
		"1.5 satellites across 5 orbital planes at altitude 500 km",
		"20 satellites across 5 orbital planes at altitude 0.,200 km",
		"20 satellites across 5 orbital planes at altitude 12,00 km",
	} {
		_, err := ExtractParameters(text)
		assert.ErrorIs(t, err, ErrNoMatch, "text=%q", text)
	}

	got, err := ExtractParameters("120 satellites across 5 orbital planes at altitude 1,200 km")
	require.NoError(t, err)
	assert.Equal(t, float64(120), got.NumSatellites)
	assert.Equal(t, []float64{1200}, got.Altitudes)
}

func TestExtractParameters_NoMatch(t *testing.T) {
	for _, text := range []string{
		"How many satellites would you like?",
		"5 planes at 500 km with 20 satellites",
		"",
	} {
		_, err := ExtractParameters(text)
		assert.ErrorIs(t, err, ErrNoMatch, "text=%q", text)
	}
}

func TestPatternExtractor_NoMarkerIsPlainReply(t *testing.T) {
	e := NewPatternExtractor()
	out, err := e.Extract(&llm.Generation{Text: "So 20 satellites across 5 orbital planes at altitude 500 km. Shall I proceed?"})
	require.NoError(t, err)
	require.Empty(t, out.Candidates)
	require.Contains(t, out.Text, "Shall I proceed?")
}

func TestPatternExtractor_MarkerWithParameters(t *testing.T) {
	e := NewPatternExtractor()
	out, err := e.Extract(&llm.Generation{
		Text: "Earlier you said 3 satellites. " + prompts.TriggerMarker + " 20 satellites across 5 orbital planes at altitude 500 km",
	})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)
	require.Equal(t, constellation.Candidate{NumSatellites: 20, NumPlanes: 5, Altitudes: []float64{500}}, out.Candidates[0].Params)
	require.NotContains(t, out.Text, prompts.TriggerMarker)
}

func TestPatternExtractor_MarkerAtEnd(t *testing.T) {
	e := NewPatternExtractor()
	out, err := e.Extract(&llm.Generation{Text: "8 satellites across 2 orbital planes at altitude 700 km [create_constellation]"})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)
	require.Equal(t, float64(8), out.Candidates[0].Params.NumSatellites)
}

func TestPatternExtractor_MarkerWithoutParameters(t *testing.T) {
	e := NewPatternExtractor()
	out, err := e.Extract(&llm.Generation{Text: prompts.TriggerMarker + " creating your constellation"})
	require.ErrorIs(t, err, ErrNoMatch)
	require.NotNil(t, out)
	require.Empty(t, out.Candidates)
}

func TestPatternExtractor_Metadata(t *testing.T) {
	e := NewPatternExtractor()
	require.Equal(t, StrategyPattern, e.Name())
	require.False(t, e.ExposesTools())
	require.Equal(t, prompts.PatternSystemPrompt, e.SystemPrompt())
}

func TestPatternExtractor_PreambleStopsAtMarker(t *testing.T) {
	e := NewPatternExtractor()
	out, err := e.Extract(&llm.Generation{Text: "Perfect, launching now. " + prompts.TriggerMarker + " 20 satellites across 5 orbital planes at altitude 500 km"})
	require.NoError(t, err)
	require.Equal(t, "Perfect, launching now.", out.Preamble)
	require.Equal(t, "Perfect, launching now.  20 satellites across 5 orbital planes at altitude 500 km", out.Text)
}
