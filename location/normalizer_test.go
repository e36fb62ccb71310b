package location

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/evidware/case-api/models"
)

type stubChat struct {
	content string
	err     error
	calls   int
}

func (s *stubChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

type stubGeocoder struct {
	coords *models.Coordinates
	calls  int
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string) *models.Coordinates {
	s.calls++
	return s.coords
}

func TestNormalizeEmptyInput(t *testing.T) {
	chat := &stubChat{}
	geo := &stubGeocoder{}
	n := NewNormalizer(chat, "gpt-4o-mini", geo)

	for _, input := range []string{"", "   ", "\t\n"} {
		res := n.Normalize(context.Background(), input)

		assert.Equal(t, "United States", res.NormalizedLocation)
		assert.Equal(t, models.DefaultCoordinates(), res.Coordinates)
		assert.Equal(t, "n/a", res.Confidence)
	}
	assert.Zero(t, chat.calls, "empty input must not reach the AI")
	assert.Zero(t, geo.calls, "empty input must not reach the geocoder")
}

func TestNormalizeDictionaryExact(t *testing.T) {
	chat := &stubChat{}
	geo := &stubGeocoder{}
	n := NewNormalizer(chat, "gpt-4o-mini", geo)

	res := n.Normalize(context.Background(), "nyc")

	assert.Equal(t, "New York, NY, USA", res.NormalizedLocation)
	assert.Equal(t, models.Coordinates{Lat: 40.7128, Lng: -74.0060}, res.Coordinates)
	assert.Zero(t, chat.calls)
	assert.Zero(t, geo.calls, "table hit must skip the geocoder")
}

func TestNormalizeDictionaryExactCaseInsensitive(t *testing.T) {
	n := NewNormalizer(nil, "", nil)

	res := n.Normalize(context.Background(), "  NYC ")
	assert.Equal(t, "New York, NY, USA", res.NormalizedLocation)

	// canonical values match too
	res = n.Normalize(context.Background(), "new york, ny, usa")
	assert.Equal(t, "New York, NY, USA", res.NormalizedLocation)
}

func TestNormalizeLosAngelesAbbreviation(t *testing.T) {
	n := NewNormalizer(nil, "", nil)

	res := n.Normalize(context.Background(), "la")

	assert.Equal(t, "Los Angeles, CA, USA", res.NormalizedLocation)
	assert.Equal(t, models.Coordinates{Lat: 34.0522, Lng: -118.2437}, res.Coordinates)
}

func TestNormalizeSubstringMatch(t *testing.T) {
	chat := &stubChat{}
	n := NewNormalizer(chat, "gpt-4o-mini", nil)

	// "downtown chicago" is not an exact key but contains one
	res := n.Normalize(context.Background(), "downtown chicago")

	assert.Equal(t, "Chicago, IL, USA", res.NormalizedLocation)
	assert.Zero(t, chat.calls)
}

func TestNormalizeSubstringFirstEntryWins(t *testing.T) {
	n := NewNormalizer(nil, "", nil)

	// "dallas tx" contains "la", which sits before "dallas" in the
	// dictionary. The approximate containment heuristic is kept as-is.
	res := n.Normalize(context.Background(), "dallas tx")

	assert.Equal(t, "Los Angeles, CA, USA", res.NormalizedLocation)
}

func TestNormalizeUnknownToken(t *testing.T) {
	chat := &stubChat{}
	n := NewNormalizer(chat, "gpt-4o-mini", nil)

	res := n.Normalize(context.Background(), "somewhere unknown-ish")

	assert.Equal(t, "United States", res.NormalizedLocation)
	assert.Equal(t, models.DefaultCoordinates(), res.Coordinates)
	assert.Zero(t, chat.calls)
}

func TestNormalizeSingleCharacter(t *testing.T) {
	n := NewNormalizer(nil, "", nil)

	// "q" is short and sits inside no dictionary key
	res := n.Normalize(context.Background(), "q")

	assert.Equal(t, "United States", res.NormalizedLocation)
	assert.Equal(t, models.DefaultCoordinates(), res.Coordinates)
}

func TestNormalizeShortInputInsideDictionaryKey(t *testing.T) {
	n := NewNormalizer(nil, "", nil)

	// "x" is contained by "phoenix", the first such key in declaration
	// order, and the substring heuristic runs before the too-short check
	res := n.Normalize(context.Background(), "x")

	assert.Equal(t, "Phoenix, AZ, USA", res.NormalizedLocation)
	assert.Equal(t, models.Coordinates{Lat: 33.4484, Lng: -112.0740}, res.Coordinates)
}

func TestNormalizeAIFencedJSON(t *testing.T) {
	chat := &stubChat{content: "```json\n{\"normalizedLocation\": \"Amsterdam, Netherlands\", \"confidence\": \"high\", \"reasoning\": \"corrected misspelling\"}\n```"}
	geo := &stubGeocoder{coords: &models.Coordinates{Lat: 52.3676, Lng: 4.9041}}
	n := NewNormalizer(chat, "gpt-4o-mini", geo)

	res := n.Normalize(context.Background(), "amstredam")

	assert.Equal(t, "Amsterdam, Netherlands", res.NormalizedLocation)
	assert.Equal(t, "high", res.Confidence)
	assert.Equal(t, "corrected misspelling", res.Reasoning)
	assert.Equal(t, models.Coordinates{Lat: 52.3676, Lng: 4.9041}, res.Coordinates)
	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, 1, geo.calls)
}

func TestNormalizeAIBareJSON(t *testing.T) {
	chat := &stubChat{content: `Sure! {"normalizedLocation": "Tulsa, OK, USA", "confidence": "medium", "reasoning": "best guess"} hope that helps`}
	n := NewNormalizer(chat, "gpt-4o-mini", &stubGeocoder{})

	res := n.Normalize(context.Background(), "tulsaa")

	assert.Equal(t, "Tulsa, OK, USA", res.NormalizedLocation)
	assert.Equal(t, "medium", res.Confidence)
}

func TestNormalizeAIPlainFieldScrape(t *testing.T) {
	// invalid JSON overall, but the field is present in the text
	chat := &stubChat{content: `The answer is "normalizedLocation": "Boise, ID, USA" with some trailing prose`}
	n := NewNormalizer(chat, "gpt-4o-mini", &stubGeocoder{})

	res := n.Normalize(context.Background(), "boise area")

	assert.Equal(t, "Boise, ID, USA", res.NormalizedLocation)
	assert.Equal(t, "medium", res.Confidence)
}

func TestNormalizeAIUnparseable(t *testing.T) {
	chat := &stubChat{content: "I could not determine the location."}
	n := NewNormalizer(chat, "gpt-4o-mini", &stubGeocoder{})

	res := n.Normalize(context.Background(), "zzyzx road")

	assert.Equal(t, "zzyzx road, USA", res.NormalizedLocation)
	assert.Equal(t, "low", res.Confidence)
	assert.Equal(t, models.DefaultCoordinates(), res.Coordinates)
}

func TestNormalizeAITransportFailure(t *testing.T) {
	chat := &stubChat{err: errors.New("connection refused")}
	geo := &stubGeocoder{}
	n := NewNormalizer(chat, "gpt-4o-mini", geo)

	res := n.Normalize(context.Background(), "murfreesboro")

	assert.Equal(t, "murfreesboro, USA", res.NormalizedLocation)
	assert.Equal(t, "low", res.Confidence)
	assert.Equal(t, "AI service unavailable, using fallback", res.Reasoning)
	assert.Equal(t, models.DefaultCoordinates(), res.Coordinates)
	assert.Zero(t, geo.calls, "transport failure short-circuits to the centroid")
}

func TestNormalizeNoAIClientConfigured(t *testing.T) {
	n := NewNormalizer(nil, "", nil)

	res := n.Normalize(context.Background(), "smallville")

	assert.Equal(t, "smallville, USA", res.NormalizedLocation)
	assert.Equal(t, "low", res.Confidence)
}

func TestNormalizeGeocoderFallsBackToCentroid(t *testing.T) {
	chat := &stubChat{content: `{"normalizedLocation": "Nowhere, KS, USA", "confidence": "low", "reasoning": ""}`}
	geo := &stubGeocoder{coords: nil}
	n := NewNormalizer(chat, "gpt-4o-mini", geo)

	res := n.Normalize(context.Background(), "nowhereville")

	assert.Equal(t, "Nowhere, KS, USA", res.NormalizedLocation)
	assert.Equal(t, models.DefaultCoordinates(), res.Coordinates)
	assert.Equal(t, 1, geo.calls)
}

func TestParseAIResultMissingField(t *testing.T) {
	res := parseAIResult(`{"confidence": "high"}`, "springfield")
	assert.Equal(t, "springfield, USA", res.NormalizedLocation)
	assert.Equal(t, "low", res.Confidence)
}
